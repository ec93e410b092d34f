package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"traderboard/internal/identity"
	"traderboard/internal/models"
	"traderboard/internal/service"
)

type SubmissionHandler struct {
	Submissions *service.SubmissionService
	Logger      *zap.Logger
}

func (h *SubmissionHandler) Register(r *gin.Engine) {
	g := r.Group("/api/submissions")
	g.POST("", h.create)
	g.GET("", h.listOwn)
}

type createSubmissionRequest struct {
	Exchange      string          `json:"exchange"`
	MonthlyPnlPct decimal.Decimal `json:"monthly_pnl_pct"`
	TotalPnlUSD   decimal.Decimal `json:"total_pnl_usd"`
	WinRatePct    decimal.Decimal `json:"win_rate_pct"`
	VolumeUSD     decimal.Decimal `json:"volume_usd"`
	ProofText     string          `json:"proof_text"`
	ProofLinks    []string        `json:"proof_links"`
}

type submissionResponse struct {
	ID            uint64                  `json:"id"`
	UserID        string                  `json:"user_id"`
	Exchange      models.Exchange         `json:"exchange"`
	MonthlyPnlPct decimal.Decimal         `json:"monthly_pnl_pct"`
	TotalPnlUSD   decimal.Decimal         `json:"total_pnl_usd"`
	WinRatePct    decimal.Decimal         `json:"win_rate_pct"`
	VolumeUSD     decimal.Decimal         `json:"volume_usd"`
	ProofText     string                  `json:"proof_text,omitempty"`
	ProofLinks    []string                `json:"proof_links,omitempty"`
	Status        models.SubmissionStatus `json:"status"`
	ReviewerNote  *string                 `json:"reviewer_note,omitempty"`
	ReviewedAt    *time.Time              `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// @Summary Submit a performance claim
// @Tags submissions
// @Accept json
// @Produce json
// @Router /api/submissions [post]
func (h *SubmissionHandler) create(c *gin.Context) {
	id := identity.FromGin(c)
	if id == nil {
		Error(c, http.StatusUnauthorized, "session required", nil)
		return
	}
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Submissions.Create(c.Request.Context(), id.UserID, service.SubmissionInput{
		Exchange:      req.Exchange,
		MonthlyPnlPct: req.MonthlyPnlPct,
		TotalPnlUSD:   req.TotalPnlUSD,
		WinRatePct:    req.WinRatePct,
		VolumeUSD:     req.VolumeUSD,
		ProofText:     req.ProofText,
		ProofLinks:    req.ProofLinks,
	})
	if err != nil {
		ServiceError(c, h.Logger, err)
		return
	}
	Ok(c, toSubmissionResponse(item), nil)
}

// @Summary List the caller's own submissions
// @Tags submissions
// @Produce json
// @Router /api/submissions [get]
func (h *SubmissionHandler) listOwn(c *gin.Context) {
	id := identity.FromGin(c)
	if id == nil {
		Error(c, http.StatusUnauthorized, "session required", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Submissions.ListBySubject(c.Request.Context(), id.UserID, limit, offset)
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

func toSubmissionResponse(item *models.Submission) submissionResponse {
	var links []string
	if len(item.ProofLinks) > 0 {
		links = decodeProofLinks(item.ProofLinks)
	}
	return submissionResponse{
		ID:            item.ID,
		UserID:        item.UserID,
		Exchange:      item.Exchange,
		MonthlyPnlPct: item.MonthlyPnlPct,
		TotalPnlUSD:   item.TotalPnlUSD,
		WinRatePct:    item.WinRatePct,
		VolumeUSD:     item.VolumeUSD,
		ProofText:     item.ProofText,
		ProofLinks:    links,
		Status:        item.Status,
		ReviewerNote:  item.ReviewerNote,
		ReviewedAt:    item.ReviewedAt,
		CreatedAt:     item.CreatedAt,
	}
}
