package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderboard/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// ServiceError maps the service error taxonomy onto HTTP. Unknown
// errors are logged in full and surfaced as a generic message so
// storage internals never leak to callers.
func ServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, verr.Error(), map[string]any{"fields": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, service.ErrConflict):
		Error(c, http.StatusConflict, "submission already reviewed", nil)
	case errors.Is(err, service.ErrForbidden):
		Error(c, http.StatusForbidden, "reviewer access required", nil)
	case errors.Is(err, service.ErrTxAborted):
		Error(c, http.StatusServiceUnavailable, "could not commit review, retry", nil)
	default:
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
