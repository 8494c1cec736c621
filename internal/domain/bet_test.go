package domain_test

import (
	"errors"
	"testing"

	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

// ── Profit-by-status rule ─────────────────────────────────────────────────────

func TestComputeProfit(t *testing.T) {
	cases := []struct {
		name   string
		stake  float64
		odds   float64
		status domain.BetStatus
		want   float64
	}{
		{"won", 100, 2.1, domain.BetStatusWon, 110},
		{"lost", 100, 2.1, domain.BetStatusLost, -100},
		{"void", 100, 2.1, domain.BetStatusVoid, 0},
		{"half_won", 100, 2.1, domain.BetStatusHalfWon, 55},
		{"half_lost", 100, 2.1, domain.BetStatusHalfLost, -50},
		{"won at even odds", 250, 2.0, domain.BetStatusWon, 250},
		{"won below evens", 1000, 1.25, domain.BetStatusWon, 250},
		{"half_lost odd stake", 75, 1.8, domain.BetStatusHalfLost, -37.5},
		{"lost floors to 4dp", 33.33339, 2.1, domain.BetStatusLost, -33.3333},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ComputeProfit(
				decimal.NewFromFloat(tc.stake),
				decimal.NewFromFloat(tc.odds),
				tc.status,
			)
			if err != nil {
				t.Fatalf("ComputeProfit: %v", err)
			}
			want := decimal.NewFromFloat(tc.want)
			if !got.Equal(want) {
				t.Errorf("ComputeProfit(%v, %v, %s) = %s, want %s",
					tc.stake, tc.odds, tc.status, got, want)
			}
		})
	}
}

func TestComputeProfit_PendingIsUndefined(t *testing.T) {
	_, err := domain.ComputeProfit(decimal.NewFromInt(100), decimal.NewFromFloat(2.0), domain.BetStatusPending)
	if !errors.Is(err, domain.ErrBetPending) {
		t.Errorf("pending bet profit should return ErrBetPending, got %v", err)
	}
}

func TestComputeProfit_UnknownStatus(t *testing.T) {
	_, err := domain.ComputeProfit(decimal.NewFromInt(100), decimal.NewFromFloat(2.0), domain.BetStatus("push"))
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("unknown status should return ErrInvalidStatus, got %v", err)
	}
}

// ── Status helpers ────────────────────────────────────────────────────────────

func TestBetStatus_IsTerminal(t *testing.T) {
	if domain.BetStatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []domain.BetStatus{
		domain.BetStatusWon, domain.BetStatusLost, domain.BetStatusVoid,
		domain.BetStatusHalfWon, domain.BetStatusHalfLost,
	} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if domain.BetStatus("banana").IsTerminal() {
		t.Error("unknown status must not be terminal")
	}
}

func TestValidDate(t *testing.T) {
	if !domain.ValidDate("2024-03-09") {
		t.Error("2024-03-09 should be a valid accounting day")
	}
	for _, bad := range []string{"2024-3-9", "09-03-2024", "2024-03-32", "", "yesterday"} {
		if domain.ValidDate(bad) {
			t.Errorf("%q should not be a valid accounting day", bad)
		}
	}
}

func TestBet_SettledProfit_PrefersStoredValue(t *testing.T) {
	stored := decimal.NewFromInt(42)
	b := &domain.Bet{
		Stake:  decimal.NewFromInt(100),
		Odds:   decimal.NewFromFloat(2.0),
		Status: domain.BetStatusWon,
		Profit: &stored,
	}
	got, err := b.SettledProfit()
	if err != nil {
		t.Fatalf("SettledProfit: %v", err)
	}
	if !got.Equal(stored) {
		t.Errorf("SettledProfit() = %s, want stored %s", got, stored)
	}
}
