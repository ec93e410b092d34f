package service

import (
	"context"

	"traderboard/internal/models"
	"traderboard/internal/repository"
	"traderboard/internal/tier"
)

// rankingOrder is the leaderboard business rule: best monthly PnL pct
// first, larger total PnL breaks ties, then the earlier-created record
// ranks higher. The trailing id key keeps the ordering total when
// timestamps collide.
var rankingOrder = []repository.Sort{
	{Column: "monthly_pnl_pct", Desc: true},
	{Column: "total_pnl_usd", Desc: true},
	{Column: "created_at", Desc: false},
	{Column: "id", Desc: false},
}

// LeaderboardService answers ranked, filtered, paginated read queries
// over published stats. It owns presentation-level decisions (ordering,
// page math); the repository owns storage access.
type LeaderboardService struct {
	Repo            repository.Repository
	DefaultPageSize int
	MaxPageSize     int
}

// RankPage is one page of the ranked leaderboard plus window-level
// aggregates computed over the full window set, not the visible page.
type RankPage struct {
	Entries    []models.ApprovedStats
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	Aggregates repository.LeaderboardAggregates
}

// Rank serves the leaderboard query. Pages are 1-indexed; page and
// size are clamped to sane bounds rather than rejected.
func (s *LeaderboardService) Rank(ctx context.Context, window models.Window, tierFilter *tier.Tier, page, pageSize int) (RankPage, error) {
	page, pageSize = s.clampPage(page, pageSize)

	params := repository.LeaderboardParams{
		Window: window,
		Tier:   tierFilter,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Order:  rankingOrder,
	}
	entries, err := s.Repo.ListApprovedStats(ctx, params)
	if err != nil {
		return RankPage{}, err
	}
	total, err := s.Repo.CountApprovedStats(ctx, params)
	if err != nil {
		return RankPage{}, err
	}
	aggregates, err := s.Repo.AggregateApprovedStats(ctx, window)
	if err != nil {
		return RankPage{}, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return RankPage{
		Entries:    entries,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Aggregates: aggregates,
	}, nil
}

// StatsForUser returns every published window for one subject.
func (s *LeaderboardService) StatsForUser(ctx context.Context, userID string) ([]models.ApprovedStats, error) {
	return s.Repo.ListApprovedStatsByUser(ctx, userID)
}

func (s *LeaderboardService) clampPage(page, pageSize int) (int, int) {
	def := s.DefaultPageSize
	if def <= 0 {
		def = 10
	}
	max := s.MaxPageSize
	if max <= 0 {
		max = 100
	}
	if pageSize <= 0 {
		pageSize = def
	}
	if pageSize > max {
		pageSize = max
	}
	if page < 1 {
		page = 1
	}
	return page, pageSize
}
