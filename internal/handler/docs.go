package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterDocs serves the short /docs entry point by redirecting to the
// swagger UI.
func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})
}
