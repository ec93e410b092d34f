package identity

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// publicPath reports whether a request needs no session. The
// leaderboard and trader pages are the public face of the service.
func publicPath(method, path string) bool {
	if path == "/healthz" || path == "/readyz" || path == "/docs" || strings.HasPrefix(path, "/swagger") {
		return true
	}
	if method != http.MethodGet {
		return false
	}
	return strings.HasPrefix(path, "/api/leaderboard") || strings.HasPrefix(path, "/api/traders/")
}

// SessionMiddleware resolves the bearer token into an Identity and
// injects it into the request context. With TB_AUTH_DISABLED set (dev
// only), identity is taken from X-User-Id / X-User-Email headers
// instead.
func SessionMiddleware(client *Client, logger *zap.Logger) gin.HandlerFunc {
	disabled := strings.EqualFold(os.Getenv("TB_AUTH_DISABLED"), "true") || os.Getenv("TB_AUTH_DISABLED") == "1"

	return func(c *gin.Context) {
		if publicPath(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		if disabled {
			uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
			if uid != "" {
				SetIdentity(c, &Identity{UserID: uid, Email: strings.TrimSpace(c.GetHeader("X-User-Email"))})
			}
			c.Next()
			return
		}

		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if client == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity service unavailable"})
			return
		}
		id, err := client.ResolveSession(c.Request.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			if logger != nil {
				logger.Debug("session resolve failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

// AuditMiddleware reports write requests to the platform audit trail.
// Best effort: audit failures never fail the request.
func AuditMiddleware(client *Client, logger *zap.Logger) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}

		status := c.Writer.Status()
		actor := ""
		if id := FromGin(c); id != nil {
			actor = id.UserID
		}
		duration := time.Since(start)

		// Detached so a slow or unreachable platform never holds the
		// response. Everything the event needs is captured above; the
		// gin context is not touched past this point.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := client.CreateAuditEvent(ctx, AuditEvent{
				Actor:  actor,
				Action: "traderboard_http_write",
				Level:  levelFromStatus(status),
				Details: map[string]any{
					"method":   method,
					"path":     path,
					"status":   status,
					"duration": duration.String(),
				},
			})
			if err != nil && logger != nil {
				logger.Debug("audit event failed", zap.Error(err))
			}
		}()
	}
}

func levelFromStatus(status int) string {
	if status >= 500 {
		return "error"
	}
	if status >= 400 {
		return "warn"
	}
	return "info"
}
