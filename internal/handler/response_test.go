package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderboard/internal/service"
)

func serveError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		ServiceError(c, zap.NewNop(), err)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestServiceError_ValidationListsEveryField(t *testing.T) {
	verr := &service.ValidationError{}
	verr.Fields = append(verr.Fields,
		service.FieldError{Field: "exchange", Message: "unknown exchange"},
		service.FieldError{Field: "win_rate_pct", Message: "out of range"},
	)

	w := serveError(t, verr)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", w.Code)
	}
	resp := decodeEnvelope(t, w)
	raw, err := json.Marshal(resp.Meta["fields"])
	if err != nil {
		t.Fatalf("marshal fields meta: %v", err)
	}
	var fields []service.FieldError
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode fields meta: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("fields=%v want both offending fields", fields)
	}
	for i, want := range []string{"exchange", "win_rate_pct"} {
		if fields[i].Field != want {
			t.Fatalf("fields[%d]=%s want %s", i, fields[i].Field, want)
		}
	}
}

func TestServiceError_TaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrTxAborted, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := serveError(t, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status=%d want %d", tc.err, w.Code, tc.status)
		}
		resp := decodeEnvelope(t, w)
		if resp.Code != tc.status {
			t.Fatalf("%v: envelope code=%d want %d", tc.err, resp.Code, tc.status)
		}
		if resp.Message == "" {
			t.Fatalf("%v: empty message", tc.err)
		}
	}
}

func TestServiceError_WrappedSentinelStillMaps(t *testing.T) {
	w := serveError(t, errors.Join(errors.New("lock wait"), service.ErrConflict))
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d want 409 for wrapped conflict", w.Code)
	}
}

func TestServiceError_UnknownErrorNeverLeaksDetails(t *testing.T) {
	w := serveError(t, errors.New(`pq: connection refused host=db-internal-7`))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Message != "internal error" {
		t.Fatalf("message=%q want generic", resp.Message)
	}
	if strings.Contains(w.Body.String(), "db-internal") || strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("storage details leaked: %s", w.Body.String())
	}
}
