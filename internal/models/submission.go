package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Submission is one self-reported performance claim awaiting (or past)
// moderator review. Status is mutated only inside the review transaction.
type Submission struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"type:varchar(100);not null;index"`

	Exchange Exchange `gorm:"type:varchar(20);not null"`

	// Store money-like values as numeric to avoid float errors.
	MonthlyPnlPct decimal.Decimal `gorm:"column:monthly_pnl_pct;type:numeric(20,10);not null"`
	TotalPnlUSD   decimal.Decimal `gorm:"column:total_pnl_usd;type:numeric(30,10);not null"`
	WinRatePct    decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	VolumeUSD     decimal.Decimal `gorm:"column:volume_usd;type:numeric(30,10);not null"`

	ProofText  string         `gorm:"type:text"`
	ProofLinks datatypes.JSON `gorm:"type:jsonb"`

	Status SubmissionStatus `gorm:"type:varchar(20);not null;index;default:'PENDING'"`

	ReviewerNote *string    `gorm:"type:text"`
	ReviewedAt   *time.Time `gorm:"type:timestamptz"`
	ReviewedBy   *string    `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Submission) TableName() string {
	return "submissions"
}
