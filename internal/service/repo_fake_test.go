package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"traderboard/internal/models"
	"traderboard/internal/repository"
)

// fakeRepo is an in-memory Repository with transaction rollback, enough
// to exercise the pipeline without a database. Not safe for concurrent
// use; tests drive it from one goroutine.
type fakeRepo struct {
	nextSubID   uint64
	nextStatsID uint64
	clock       time.Time

	submissions map[uint64]models.Submission
	stats       map[string]models.ApprovedStats

	failUpsert bool
	failMark   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clock:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		submissions: map[uint64]models.Submission{},
		stats:       map[string]models.ApprovedStats{},
	}
}

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func statsKey(userID string, window models.Window) string {
	return userID + "|" + string(window)
}

func (f *fakeRepo) InTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	subsBackup := make(map[uint64]models.Submission, len(f.submissions))
	for k, v := range f.submissions {
		subsBackup[k] = v
	}
	statsBackup := make(map[string]models.ApprovedStats, len(f.stats))
	for k, v := range f.stats {
		statsBackup[k] = v
	}
	if err := fn(nil); err != nil {
		f.submissions = subsBackup
		f.stats = statsBackup
		return err
	}
	return nil
}

func (f *fakeRepo) InsertSubmission(_ context.Context, item *models.Submission) error {
	f.nextSubID++
	item.ID = f.nextSubID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = f.tick()
	}
	f.submissions[item.ID] = *item
	return nil
}

func (f *fakeRepo) GetSubmissionByID(_ context.Context, id uint64) (*models.Submission, error) {
	item, ok := f.submissions[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeRepo) GetSubmissionByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uint64) (*models.Submission, error) {
	return f.GetSubmissionByID(ctx, id)
}

func (f *fakeRepo) ListSubmissions(_ context.Context, params repository.ListSubmissionsParams) ([]models.Submission, error) {
	items := f.filterSubmissions(params)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return page(items, params.Limit, params.Offset), nil
}

func (f *fakeRepo) CountSubmissions(_ context.Context, params repository.ListSubmissionsParams) (int64, error) {
	return int64(len(f.filterSubmissions(params))), nil
}

func (f *fakeRepo) filterSubmissions(params repository.ListSubmissionsParams) []models.Submission {
	var items []models.Submission
	for _, item := range f.submissions {
		if params.UserID != nil && item.UserID != *params.UserID {
			continue
		}
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (f *fakeRepo) MarkSubmissionReviewedTx(_ context.Context, _ *gorm.DB, id uint64, status models.SubmissionStatus, note *string, reviewer string, reviewedAt time.Time) (int64, error) {
	if f.failMark {
		return 0, errors.New("induced mark failure")
	}
	item, ok := f.submissions[id]
	if !ok || item.Status != models.StatusPending {
		return 0, nil
	}
	item.Status = status
	item.ReviewerNote = note
	item.ReviewedBy = &reviewer
	item.ReviewedAt = &reviewedAt
	f.submissions[id] = item
	return 1, nil
}

func (f *fakeRepo) UpsertApprovedStatsTx(_ context.Context, _ *gorm.DB, item *models.ApprovedStats) error {
	if f.failUpsert {
		return errors.New("induced upsert failure")
	}
	key := statsKey(item.UserID, item.Window)
	if existing, ok := f.stats[key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		f.nextStatsID++
		item.ID = f.nextStatsID
		item.CreatedAt = f.tick()
	}
	item.UpdatedAt = f.tick()
	f.stats[key] = *item
	return nil
}

func (f *fakeRepo) GetApprovedStats(_ context.Context, userID string, window models.Window) (*models.ApprovedStats, error) {
	item, ok := f.stats[statsKey(userID, window)]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeRepo) ListApprovedStats(_ context.Context, params repository.LeaderboardParams) ([]models.ApprovedStats, error) {
	items := f.filterStats(params)
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range params.Order {
			cmp := compareStats(items[i], items[j], key.Column)
			if cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return page(items, params.Limit, params.Offset), nil
}

func (f *fakeRepo) CountApprovedStats(_ context.Context, params repository.LeaderboardParams) (int64, error) {
	return int64(len(f.filterStats(params))), nil
}

func (f *fakeRepo) filterStats(params repository.LeaderboardParams) []models.ApprovedStats {
	var items []models.ApprovedStats
	for _, item := range f.stats {
		if item.Window != params.Window {
			continue
		}
		if params.Tier != nil && item.Tier != *params.Tier {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (f *fakeRepo) ListApprovedStatsByUser(_ context.Context, userID string) ([]models.ApprovedStats, error) {
	var items []models.ApprovedStats
	for _, item := range f.stats {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Window < items[j].Window
	})
	return items, nil
}

func (f *fakeRepo) AggregateApprovedStats(_ context.Context, window models.Window) (repository.LeaderboardAggregates, error) {
	agg := repository.LeaderboardAggregates{
		TotalPnlUSD:      decimal.Zero,
		AvgMonthlyPnlPct: decimal.Zero,
	}
	sumPct := decimal.Zero
	for _, item := range f.stats {
		if item.Window != window {
			continue
		}
		agg.Traders++
		agg.TotalPnlUSD = agg.TotalPnlUSD.Add(item.TotalPnlUSD)
		sumPct = sumPct.Add(item.MonthlyPnlPct)
	}
	if agg.Traders > 0 {
		agg.AvgMonthlyPnlPct = sumPct.Div(decimal.NewFromInt(agg.Traders))
	}
	return agg, nil
}

func compareStats(a, b models.ApprovedStats, column string) int {
	switch column {
	case "monthly_pnl_pct":
		return a.MonthlyPnlPct.Cmp(b.MonthlyPnlPct)
	case "total_pnl_usd":
		return a.TotalPnlUSD.Cmp(b.TotalPnlUSD)
	case "created_at":
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return 1
		}
		return 0
	case "id":
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	}
	return 0
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ repository.Repository = (*fakeRepo)(nil)
