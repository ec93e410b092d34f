package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traderboard/internal/identity"
	"traderboard/internal/service"
)

// ReviewHandler is the moderator surface: the pending queue and the
// review decision endpoint.
type ReviewHandler struct {
	Submissions *service.SubmissionService
	Review      *service.ReviewService
	Policy      service.ReviewerPolicy
	Logger      *zap.Logger
}

func (h *ReviewHandler) Register(r *gin.Engine) {
	g := r.Group("/api/admin/submissions")
	g.GET("", h.pending)
	g.POST("/review", h.review)
}

// @Summary List the pending review queue
// @Tags admin
// @Produce json
// @Router /api/admin/submissions [get]
func (h *ReviewHandler) pending(c *gin.Context) {
	if _, ok := h.requireReviewer(c); !ok {
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Submissions.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		ServiceError(c, h.Logger, err)
		return
	}
	out := make([]submissionResponse, 0, len(items))
	for i := range items {
		out = append(out, toSubmissionResponse(&items[i]))
	}
	Ok(c, out, paginationMeta(limit, offset, total))
}

type reviewRequest struct {
	SubmissionID uint64 `json:"submission_id"`
	Action       string `json:"action"`
	Note         string `json:"note"`
}

// @Summary Submit a review decision
// @Tags admin
// @Accept json
// @Produce json
// @Router /api/admin/submissions/review [post]
func (h *ReviewHandler) review(c *gin.Context) {
	reviewer, ok := h.requireReviewer(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.SubmissionID == 0 {
		Error(c, http.StatusBadRequest, "submission_id required", nil)
		return
	}
	decision, ok := service.ParseDecision(req.Action)
	if !ok {
		Error(c, http.StatusBadRequest, "action must be approve or reject", nil)
		return
	}
	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	if err := h.Review.Review(c.Request.Context(), req.SubmissionID, decision, note, reviewer); err != nil {
		ServiceError(c, h.Logger, err)
		return
	}
	Ok(c, map[string]any{"submission_id": req.SubmissionID, "action": string(decision)}, nil)
}

// requireReviewer resolves the caller's identity and checks the
// reviewer policy before any moderator operation.
func (h *ReviewHandler) requireReviewer(c *gin.Context) (string, bool) {
	id := identity.FromGin(c)
	if id == nil {
		Error(c, http.StatusUnauthorized, "session required", nil)
		return "", false
	}
	reviewer := id.Email
	if reviewer == "" {
		reviewer = id.UserID
	}
	if h.Policy != nil {
		if err := h.Policy.CanReview(c.Request.Context(), reviewer); err != nil {
			ServiceError(c, h.Logger, err)
			return "", false
		}
	}
	return reviewer, true
}
