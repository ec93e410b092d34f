package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"traderboard/internal/models"
	"traderboard/internal/repository"
)

// Accepted ranges for submitted figures.
var (
	minMonthlyPnlPct = decimal.NewFromInt(-100)
	maxMonthlyPnlPct = decimal.NewFromInt(1000)
	minTotalPnlUSD   = decimal.NewFromInt(-1_000_000)
	maxTotalPnlUSD   = decimal.NewFromInt(10_000_000)
	maxWinRatePct    = decimal.NewFromInt(100)
	maxVolumeUSD     = decimal.NewFromInt(100_000_000)
)

// SubmissionService owns submission records and their lifecycle state.
// Every record it creates starts PENDING; only the review transaction
// moves one out.
type SubmissionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// SubmissionInput is the payload of a submit action, figures already
// parsed into decimals.
type SubmissionInput struct {
	Exchange      string
	MonthlyPnlPct decimal.Decimal
	TotalPnlUSD   decimal.Decimal
	WinRatePct    decimal.Decimal
	VolumeUSD     decimal.Decimal
	ProofText     string
	ProofLinks    []string
}

// Create validates the payload and persists a new PENDING submission.
// A subject may hold any number of submissions, pending ones included.
func (s *SubmissionService) Create(ctx context.Context, userID string, input SubmissionInput) (*models.Submission, error) {
	verr := &ValidationError{}
	exchange, ok := models.ParseExchange(input.Exchange)
	if !ok {
		verr.add("exchange", "unknown exchange")
	}
	if input.MonthlyPnlPct.LessThan(minMonthlyPnlPct) || input.MonthlyPnlPct.GreaterThan(maxMonthlyPnlPct) {
		verr.add("monthly_pnl_pct", "must be between -100 and 1000")
	}
	if input.TotalPnlUSD.LessThan(minTotalPnlUSD) || input.TotalPnlUSD.GreaterThan(maxTotalPnlUSD) {
		verr.add("total_pnl_usd", "must be between -1000000 and 10000000")
	}
	if input.WinRatePct.IsNegative() || input.WinRatePct.GreaterThan(maxWinRatePct) {
		verr.add("win_rate_pct", "must be between 0 and 100")
	}
	if input.VolumeUSD.IsNegative() || input.VolumeUSD.GreaterThan(maxVolumeUSD) {
		verr.add("volume_usd", "must be between 0 and 100000000")
	}
	links := make([]string, 0, len(input.ProofLinks))
	for _, raw := range input.ProofLinks {
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}
		if !validProofURL(link) {
			verr.add("proof_links", "invalid url: "+link)
			continue
		}
		links = append(links, link)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	linksRaw, err := json.Marshal(links)
	if err != nil {
		return nil, err
	}
	item := &models.Submission{
		UserID:        userID,
		Exchange:      exchange,
		MonthlyPnlPct: input.MonthlyPnlPct,
		TotalPnlUSD:   input.TotalPnlUSD,
		WinRatePct:    input.WinRatePct,
		VolumeUSD:     input.VolumeUSD,
		ProofText:     strings.TrimSpace(input.ProofText),
		ProofLinks:    datatypes.JSON(linksRaw),
		Status:        models.StatusPending,
	}
	if err := s.Repo.InsertSubmission(ctx, item); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("submission created",
			zap.Uint64("id", item.ID),
			zap.String("user_id", userID),
			zap.String("exchange", string(exchange)),
		)
	}
	return item, nil
}

// Get returns one submission or ErrNotFound.
func (s *SubmissionService) Get(ctx context.Context, id uint64) (*models.Submission, error) {
	item, err := s.Repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListBySubject returns a subject's submissions, newest first.
func (s *SubmissionService) ListBySubject(ctx context.Context, userID string, limit, offset int) ([]models.Submission, int64, error) {
	params := repository.ListSubmissionsParams{
		Limit:  limit,
		Offset: offset,
		UserID: &userID,
	}
	items, err := s.Repo.ListSubmissions(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountSubmissions(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListPending returns the reviewer's queue, newest first.
func (s *SubmissionService) ListPending(ctx context.Context, limit, offset int) ([]models.Submission, int64, error) {
	pending := models.StatusPending
	params := repository.ListSubmissionsParams{
		Limit:  limit,
		Offset: offset,
		Status: &pending,
	}
	items, err := s.Repo.ListSubmissions(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountSubmissions(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func validProofURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	}
	return false
}
