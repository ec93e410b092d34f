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
	"traderboard/internal/tier"
)

type LeaderboardHandler struct {
	Leaderboard *service.LeaderboardService
	Identity    *identity.Client
	Logger      *zap.Logger
}

func (h *LeaderboardHandler) Register(r *gin.Engine) {
	r.GET("/api/leaderboard", h.rank)
	r.GET("/api/traders/:id/stats", h.traderStats)
}

type leaderboardEntry struct {
	Rank          int             `json:"rank"`
	UserID        string          `json:"user_id"`
	Username      string          `json:"username,omitempty"`
	DisplayName   string          `json:"display_name,omitempty"`
	Avatar        string          `json:"avatar,omitempty"`
	Exchange      models.Exchange `json:"exchange"`
	MonthlyPnlPct decimal.Decimal `json:"monthly_pnl_pct"`
	TotalPnlUSD   decimal.Decimal `json:"total_pnl_usd"`
	WinRatePct    decimal.Decimal `json:"win_rate_pct"`
	VolumeUSD     decimal.Decimal `json:"volume_usd"`
	Tier          tier.Tier       `json:"tier"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type leaderboardAggregates struct {
	TotalPnlUSD      decimal.Decimal `json:"total_pnl_usd"`
	AvgMonthlyPnlPct decimal.Decimal `json:"avg_monthly_pnl_pct"`
	Traders          int64           `json:"traders"`
}

// @Summary Ranked leaderboard for one reporting window
// @Tags leaderboard
// @Produce json
// @Param window query string false "reporting window" default(THIS_MONTH)
// @Param tier query string false "tier filter"
// @Param page query int false "1-indexed page" default(1)
// @Param limit query int false "page size"
// @Router /api/leaderboard [get]
func (h *LeaderboardHandler) rank(c *gin.Context) {
	window := models.WindowThisMonth
	if raw := c.Query("window"); raw != "" {
		w, ok := models.ParseWindow(raw)
		if !ok {
			Error(c, http.StatusBadRequest, "unknown window", nil)
			return
		}
		window = w
	}
	var tierFilter *tier.Tier
	if raw := strQueryPtr(c, "tier"); raw != nil {
		if !tier.Valid(*raw) {
			Error(c, http.StatusBadRequest, "unknown tier", nil)
			return
		}
		t := tier.Tier(*raw)
		tierFilter = &t
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 0)

	result, err := h.Leaderboard.Rank(c.Request.Context(), window, tierFilter, page, limit)
	if err != nil {
		ServiceError(c, h.Logger, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(result.Entries))
	for i := range result.Entries {
		entries = append(entries, h.toEntry(c, &result.Entries[i], (result.Page-1)*result.PageSize+i+1))
	}
	Ok(c, map[string]any{
		"window":  window,
		"entries": entries,
		"aggregates": leaderboardAggregates{
			TotalPnlUSD:      result.Aggregates.TotalPnlUSD,
			AvgMonthlyPnlPct: result.Aggregates.AvgMonthlyPnlPct,
			Traders:          result.Aggregates.Traders,
		},
	}, pageMeta(result.Page, result.PageSize, result.Total, result.TotalPages))
}

// @Summary Published stats for one trader across all windows
// @Tags leaderboard
// @Produce json
// @Router /api/traders/{id}/stats [get]
func (h *LeaderboardHandler) traderStats(c *gin.Context) {
	userID := c.Param("id")
	items, err := h.Leaderboard.StatsForUser(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, h.Logger, err)
		return
	}
	entries := make([]leaderboardEntry, 0, len(items))
	for i := range items {
		entries = append(entries, h.toEntry(c, &items[i], 0))
	}
	out := map[string]any{"user_id": userID, "windows": entries}
	if p := h.profile(c, userID); p != nil {
		out["username"] = p.Username
		out["display_name"] = p.DisplayName
		out["avatar"] = p.Avatar
	}
	Ok(c, out, nil)
}

func (h *LeaderboardHandler) toEntry(c *gin.Context, item *models.ApprovedStats, rank int) leaderboardEntry {
	entry := leaderboardEntry{
		Rank:          rank,
		UserID:        item.UserID,
		Exchange:      item.Exchange,
		MonthlyPnlPct: item.MonthlyPnlPct,
		TotalPnlUSD:   item.TotalPnlUSD,
		WinRatePct:    item.WinRatePct,
		VolumeUSD:     item.VolumeUSD,
		Tier:          item.Tier,
		UpdatedAt:     item.UpdatedAt,
	}
	if p := h.profile(c, item.UserID); p != nil {
		entry.Username = p.Username
		entry.DisplayName = p.DisplayName
		entry.Avatar = p.Avatar
	}
	return entry
}

// profile is best effort: a missing or unreachable profile service
// degrades to bare user ids, never to a failed leaderboard.
func (h *LeaderboardHandler) profile(c *gin.Context, userID string) *identity.Profile {
	if h.Identity == nil {
		return nil
	}
	p, err := h.Identity.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Debug("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return p
}
