package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traderboard/internal/models"
	"traderboard/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Submissions ------------------------------------------------------------

func (s *Store) InsertSubmission(ctx context.Context, item *models.Submission) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSubmissionByID(ctx context.Context, id uint64) (*models.Submission, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Submission
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetSubmissionByIDForUpdateTx re-reads a submission inside the review
// transaction holding a row lock, so two concurrent reviewers serialize
// on the same row.
func (s *Store) GetSubmissionByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uint64) (*models.Submission, error) {
	if tx == nil {
		return nil, nil
	}
	var item models.Submission
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSubmissions(ctx context.Context, params repository.ListSubmissionsParams) ([]models.Submission, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applySubmissionFilters(s.db.WithContext(ctx).Model(&models.Submission{}), params)
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Submission
	if err := query.
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSubmissions(ctx context.Context, params repository.ListSubmissionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := applySubmissionFilters(s.db.WithContext(ctx).Model(&models.Submission{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MarkSubmissionReviewedTx transitions a submission out of PENDING. The
// WHERE guard on status makes the update a no-op when another reviewer
// already decided; callers check the returned row count.
func (s *Store) MarkSubmissionReviewedTx(ctx context.Context, tx *gorm.DB, id uint64, status models.SubmissionStatus, note *string, reviewer string, reviewedAt time.Time) (int64, error) {
	if tx == nil {
		return 0, nil
	}
	res := tx.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Where("status = ?", models.StatusPending).
		Updates(map[string]any{
			"status":        status,
			"reviewer_note": note,
			"reviewed_at":   reviewedAt,
			"reviewed_by":   reviewer,
		})
	return res.RowsAffected, res.Error
}

func applySubmissionFilters(query *gorm.DB, params repository.ListSubmissionsParams) *gorm.DB {
	if params.UserID != nil && strings.TrimSpace(*params.UserID) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.UserID))
	}
	if params.Status != nil && *params.Status != "" {
		query = query.Where("status = ?", *params.Status)
	}
	return query
}

// --- Approved stats ---------------------------------------------------------

func (s *Store) UpsertApprovedStatsTx(ctx context.Context, tx *gorm.DB, item *models.ApprovedStats) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "window"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"exchange",
			"monthly_pnl_pct",
			"total_pnl_usd",
			"win_rate_pct",
			"volume_usd",
			"tier",
			"submission_id",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetApprovedStats(ctx context.Context, userID string, window models.Window) (*models.ApprovedStats, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ApprovedStats
	err := s.db.WithContext(ctx).
		First(&item, `user_id = ? AND "window" = ?`, userID, window).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListApprovedStats(ctx context.Context, params repository.LeaderboardParams) ([]models.ApprovedStats, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyStatsFilters(s.db.WithContext(ctx).Model(&models.ApprovedStats{}), params)
	for _, key := range params.Order {
		query = query.Order(orderExpr(key))
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.ApprovedStats
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountApprovedStats(ctx context.Context, params repository.LeaderboardParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := applyStatsFilters(s.db.WithContext(ctx).Model(&models.ApprovedStats{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListApprovedStatsByUser(ctx context.Context, userID string) ([]models.ApprovedStats, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ApprovedStats
	if err := s.db.WithContext(ctx).
		Model(&models.ApprovedStats{}).
		Where("user_id = ?", userID).
		Order(`"window" asc`).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AggregateApprovedStats summarizes one whole window. COALESCE keeps an
// empty window at exact zeros instead of NULL.
func (s *Store) AggregateApprovedStats(ctx context.Context, window models.Window) (repository.LeaderboardAggregates, error) {
	if s == nil || s.db == nil {
		return repository.LeaderboardAggregates{}, nil
	}
	var row struct {
		TotalPnlUSD      decimal.Decimal `gorm:"column:total_pnl_usd"`
		AvgMonthlyPnlPct decimal.Decimal `gorm:"column:avg_monthly_pnl_pct"`
		Traders          int64           `gorm:"column:traders"`
	}
	err := s.db.WithContext(ctx).
		Model(&models.ApprovedStats{}).
		Select("COALESCE(SUM(total_pnl_usd), 0) AS total_pnl_usd, COALESCE(AVG(monthly_pnl_pct), 0) AS avg_monthly_pnl_pct, COUNT(*) AS traders").
		Where(`"window" = ?`, window).
		Scan(&row).Error
	if err != nil {
		return repository.LeaderboardAggregates{}, err
	}
	return repository.LeaderboardAggregates{
		TotalPnlUSD:      row.TotalPnlUSD,
		AvgMonthlyPnlPct: row.AvgMonthlyPnlPct,
		Traders:          row.Traders,
	}, nil
}

func applyStatsFilters(query *gorm.DB, params repository.LeaderboardParams) *gorm.DB {
	query = query.Where(`"window" = ?`, params.Window)
	if params.Tier != nil && *params.Tier != "" {
		query = query.Where("tier = ?", *params.Tier)
	}
	return query
}

func orderExpr(key repository.Sort) string {
	direction := "asc"
	if key.Desc {
		direction = "desc"
	}
	return key.Column + " " + direction
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
