package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traderboard/internal/db"
)

// HealthHandler exposes the liveness and readiness probes. Liveness is
// unconditional; readiness requires a reachable database, since every
// endpoint except the probes touches storage.
type HealthHandler struct {
	DB *db.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

// @Summary Liveness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "traderboard", "status": "ok"})
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if err := db.Ping(h.DB); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"service": "traderboard",
			"status":  "db_unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": "traderboard", "status": "ready"})
}
