package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"traderboard/internal/models"
	"traderboard/internal/tier"
)

// Repository is the storage surface for the review pipeline and the
// leaderboard read path. The *Tx methods run against a transaction
// handle obtained from InTx; submission status is only ever written
// through MarkSubmissionReviewedTx so that no caller can move a
// submission out of PENDING outside the review transaction.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Submissions.
	InsertSubmission(ctx context.Context, item *models.Submission) error
	GetSubmissionByID(ctx context.Context, id uint64) (*models.Submission, error)
	GetSubmissionByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uint64) (*models.Submission, error)
	ListSubmissions(ctx context.Context, params ListSubmissionsParams) ([]models.Submission, error)
	CountSubmissions(ctx context.Context, params ListSubmissionsParams) (int64, error)
	MarkSubmissionReviewedTx(ctx context.Context, tx *gorm.DB, id uint64, status models.SubmissionStatus, note *string, reviewer string, reviewedAt time.Time) (int64, error)

	// Approved stats.
	UpsertApprovedStatsTx(ctx context.Context, tx *gorm.DB, item *models.ApprovedStats) error
	GetApprovedStats(ctx context.Context, userID string, window models.Window) (*models.ApprovedStats, error)
	ListApprovedStats(ctx context.Context, params LeaderboardParams) ([]models.ApprovedStats, error)
	CountApprovedStats(ctx context.Context, params LeaderboardParams) (int64, error)
	ListApprovedStatsByUser(ctx context.Context, userID string) ([]models.ApprovedStats, error)
	AggregateApprovedStats(ctx context.Context, window models.Window) (LeaderboardAggregates, error)
}

type ListSubmissionsParams struct {
	Limit  int
	Offset int
	UserID *string
	Status *models.SubmissionStatus
}

// Sort is one ordering key. The leaderboard service owns the key
// sequence; the store only applies it.
type Sort struct {
	Column string
	Desc   bool
}

type LeaderboardParams struct {
	Window models.Window
	Tier   *tier.Tier
	Limit  int
	Offset int
	Order  []Sort
}

// LeaderboardAggregates summarize one whole window independent of
// pagination and tier filtering.
type LeaderboardAggregates struct {
	TotalPnlUSD      decimal.Decimal
	AvgMonthlyPnlPct decimal.Decimal
	Traders          int64
}
