package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"traderboard/internal/models"
	"traderboard/internal/repository"
	"traderboard/internal/tier"
)

// Decision is a reviewer's terminal judgment on a pending submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, bool) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DecisionApprove, DecisionReject:
		return d, true
	}
	return "", false
}

// ReviewerPolicy is the authorization collaborator consulted before a
// decision is accepted. Implementations are expected to be cheap.
type ReviewerPolicy interface {
	CanReview(ctx context.Context, reviewer string) error
}

// AllowlistPolicy admits reviewers on a fixed, case-insensitive list.
type AllowlistPolicy struct {
	allowed map[string]struct{}
}

func NewAllowlistPolicy(reviewers []string) *AllowlistPolicy {
	allowed := make(map[string]struct{}, len(reviewers))
	for _, r := range reviewers {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		allowed[r] = struct{}{}
	}
	return &AllowlistPolicy{allowed: allowed}
}

func (p *AllowlistPolicy) CanReview(_ context.Context, reviewer string) error {
	if p == nil {
		return ErrForbidden
	}
	if _, ok := p.allowed[strings.ToLower(strings.TrimSpace(reviewer))]; !ok {
		return ErrForbidden
	}
	return nil
}

// ReviewService orchestrates the pending -> approved/rejected
// transition and, on approval, publishes the subject's stats into the
// current window. The status re-check and the stats upsert run in one
// database transaction; a submission is never observable as approved
// but unpublished.
type ReviewService struct {
	Repo   repository.Repository
	Policy ReviewerPolicy
	Logger *zap.Logger
}

// Review applies one decision. Returns ErrNotFound, ErrConflict,
// ErrForbidden, or ErrTxAborted per the error taxonomy.
func (s *ReviewService) Review(ctx context.Context, submissionID uint64, decision Decision, note *string, reviewer string) error {
	if s.Policy != nil {
		if err := s.Policy.CanReview(ctx, reviewer); err != nil {
			return err
		}
	}

	status := models.StatusRejected
	if decision == DecisionApprove {
		status = models.StatusApproved
	}

	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		// Guard re-read inside the transaction boundary; holds the row
		// lock until commit so concurrent reviewers serialize here.
		sub, err := s.Repo.GetSubmissionByIDForUpdateTx(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrNotFound
		}
		if sub.Status != models.StatusPending {
			return ErrConflict
		}

		now := time.Now().UTC()
		rows, err := s.Repo.MarkSubmissionReviewedTx(ctx, tx, submissionID, status, note, reviewer, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrConflict
		}

		if decision != DecisionApprove {
			return nil
		}

		// Tier is recomputed from the submission's volume at publish
		// time, never cached on the submission.
		item := &models.ApprovedStats{
			UserID:        sub.UserID,
			Window:        models.WindowThisMonth,
			Exchange:      sub.Exchange,
			MonthlyPnlPct: sub.MonthlyPnlPct,
			TotalPnlUSD:   sub.TotalPnlUSD,
			WinRatePct:    sub.WinRatePct,
			VolumeUSD:     sub.VolumeUSD,
			Tier:          tier.Classify(sub.VolumeUSD),
			SubmissionID:  sub.ID,
		}
		return s.Repo.UpsertApprovedStatsTx(ctx, tx, item)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return err
		}
		if s.Logger != nil {
			s.Logger.Error("review transaction failed",
				zap.Uint64("submission_id", submissionID),
				zap.String("decision", string(decision)),
				zap.Error(err),
			)
		}
		return ErrTxAborted
	}

	if s.Logger != nil {
		s.Logger.Info("submission reviewed",
			zap.Uint64("submission_id", submissionID),
			zap.String("decision", string(decision)),
			zap.String("reviewer", reviewer),
		)
	}
	return nil
}
