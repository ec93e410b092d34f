package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"traderboard/internal/models"
	"traderboard/internal/repository"
)

func validInput() SubmissionInput {
	return SubmissionInput{
		Exchange:      "BINANCE",
		MonthlyPnlPct: decimal.NewFromFloat(12.5),
		TotalPnlUSD:   decimal.NewFromInt(40_000),
		WinRatePct:    decimal.NewFromInt(61),
		VolumeUSD:     decimal.NewFromInt(120_000),
		ProofText:     "screenshots attached",
		ProofLinks:    []string{"https://example.com/proof.png"},
	}
}

func TestCreate_StartsPending(t *testing.T) {
	repo := newFakeRepo()
	svc := &SubmissionService{Repo: repo}

	item, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("submission id not assigned")
	}
	if item.Status != models.StatusPending {
		t.Fatalf("status=%s want PENDING", item.Status)
	}
	if item.Exchange != models.ExchangeBinance {
		t.Fatalf("exchange=%s", item.Exchange)
	}
	stored, err := repo.GetSubmissionByID(context.Background(), item.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored submission missing: %v", err)
	}
}

func TestCreate_ListsEveryOffendingField(t *testing.T) {
	repo := newFakeRepo()
	svc := &SubmissionService{Repo: repo}

	input := validInput()
	input.Exchange = "NYSE"
	input.MonthlyPnlPct = decimal.NewFromInt(2000)
	input.WinRatePct = decimal.NewFromInt(101)
	input.VolumeUSD = decimal.NewFromInt(-5)
	input.ProofLinks = []string{"ftp://example.com/x", "not a url"}

	_, err := svc.Create(context.Background(), "user-1", input)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	fields := map[string]int{}
	for _, f := range verr.Fields {
		fields[f.Field]++
	}
	for _, want := range []string{"exchange", "monthly_pnl_pct", "win_rate_pct", "volume_usd"} {
		if fields[want] == 0 {
			t.Fatalf("missing field %q in %v", want, verr.Fields)
		}
	}
	if fields["proof_links"] != 2 {
		t.Fatalf("want 2 proof_links errors, got %d", fields["proof_links"])
	}
	if total, _ := repo.CountSubmissions(context.Background(), repository.ListSubmissionsParams{}); total != 0 {
		t.Fatalf("invalid submission was persisted")
	}
}

func TestCreate_MultiplePendingAllowed(t *testing.T) {
	repo := newFakeRepo()
	svc := &SubmissionService{Repo: repo}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), "user-1", validInput()); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	items, total, err := svc.ListPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total=%d len=%d want 3", total, len(items))
	}
}

func TestListPending_NewestFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := &SubmissionService{Repo: repo}

	first, _ := svc.Create(context.Background(), "user-1", validInput())
	second, _ := svc.Create(context.Background(), "user-2", validInput())

	items, _, err := svc.ListPending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len=%d want 2", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("order=[%d %d] want newest first [%d %d]", items[0].ID, items[1].ID, second.ID, first.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := &SubmissionService{Repo: newFakeRepo()}
	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
