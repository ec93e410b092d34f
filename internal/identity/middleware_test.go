package identity

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestPublicPath(t *testing.T) {
	cases := []struct {
		method string
		path   string
		public bool
	}{
		{http.MethodGet, "/healthz", true},
		{http.MethodGet, "/readyz", true},
		{http.MethodGet, "/docs", true},
		{http.MethodGet, "/swagger/index.html", true},
		{http.MethodGet, "/api/leaderboard", true},
		{http.MethodGet, "/api/traders/u1/stats", true},
		{http.MethodGet, "/api/submissions", false},
		{http.MethodPost, "/api/leaderboard", false},
		{http.MethodPost, "/api/admin/submissions/review", false},
	}
	for _, tc := range cases {
		if got := publicPath(tc.method, tc.path); got != tc.public {
			t.Fatalf("publicPath(%s %s)=%v want %v", tc.method, tc.path, got, tc.public)
		}
	}
}

func TestAuditMiddleware_NeverHoldsTheResponse(t *testing.T) {
	release := make(chan struct{})
	received := make(chan string, 1)
	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"token":"t1","expires_at":""}`))
		case "/api/v1/audit/events":
			<-release
			b, _ := io.ReadAll(r.Body)
			received <- string(b)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer platform.Close()

	client, err := NewClient(platform.URL, "key", 5*time.Second, 8)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuditMiddleware(client, zap.NewNop()))
	r.POST("/api/things", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/things", nil)

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("response waited on the audit call")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", w.Code)
	}

	close(release)
	select {
	case body := <-received:
		if !strings.Contains(body, "traderboard_http_write") {
			t.Fatalf("audit event body=%s", body)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("audit event never delivered")
	}
}

func TestAuditMiddleware_IgnoresReadsAndNonAPIPaths(t *testing.T) {
	received := make(chan string, 4)
	platform := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"token":"t1","expires_at":""}`))
		case "/api/v1/audit/events":
			received <- r.URL.Path
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer platform.Close()

	client, err := NewClient(platform.URL, "key", 5*time.Second, 8)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuditMiddleware(client, zap.NewNop()))
	r.GET("/api/leaderboard", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	r.POST("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil),
		httptest.NewRequest(http.MethodPost, "/healthz", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}

	select {
	case path := <-received:
		t.Fatalf("unexpected audit event for %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}
