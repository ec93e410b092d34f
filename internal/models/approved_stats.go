package models

import (
	"time"

	"github.com/shopspring/decimal"

	"traderboard/internal/tier"
)

// ApprovedStats is the currently-visible performance record for one
// trader within one reporting window. At most one row exists per
// (user_id, window); approval replaces it in place. SubmissionID is the
// provenance link back to the submission that produced the row and is
// never mutated after creation.
type ApprovedStats struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_approved_stats_user_window,priority:1"`
	Window Window `gorm:"type:varchar(20);not null;uniqueIndex:uq_approved_stats_user_window,priority:2;index"`

	Exchange Exchange `gorm:"type:varchar(20);not null"`

	MonthlyPnlPct decimal.Decimal `gorm:"column:monthly_pnl_pct;type:numeric(20,10);not null;index"`
	TotalPnlUSD   decimal.Decimal `gorm:"column:total_pnl_usd;type:numeric(30,10);not null"`
	WinRatePct    decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	VolumeUSD     decimal.Decimal `gorm:"column:volume_usd;type:numeric(30,10);not null"`

	Tier tier.Tier `gorm:"type:varchar(20);not null;index"`

	SubmissionID uint64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (ApprovedStats) TableName() string {
	return "approved_stats"
}
