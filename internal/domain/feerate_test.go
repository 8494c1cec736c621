package domain_test

import (
	"testing"

	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

func testTiers(t *testing.T) []domain.FeeTier {
	t.Helper()
	tiers, err := domain.ParseFeeTiers("1:0.01,5:0.012,10:0.015,25:0.02")
	if err != nil {
		t.Fatalf("ParseFeeTiers: %v", err)
	}
	return tiers
}

func TestFeePolicy_Rate(t *testing.T) {
	policy := domain.NewFeePolicy(testTiers(t))

	cases := []struct {
		count int
		want  string
	}{
		{0, "0.01"}, // below first tier: clamp down
		{1, "0.01"},
		{4, "0.01"},
		{5, "0.012"},
		{9, "0.012"},
		{10, "0.015"},
		{24, "0.015"},
		{25, "0.02"},
		{1000, "0.02"}, // above last tier: clamp up
	}
	for _, tc := range cases {
		got := policy.Rate(tc.count)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Errorf("Rate(%d) = %s, want %s", tc.count, got, want)
		}
	}
}

func TestFeePolicy_EmptySchedule(t *testing.T) {
	policy := domain.NewFeePolicy(nil)
	if !policy.Rate(7).IsZero() {
		t.Errorf("empty schedule should yield zero rate, got %s", policy.Rate(7))
	}
}

func TestFeePolicy_UnsortedInputIsSorted(t *testing.T) {
	tiers := []domain.FeeTier{
		{MinInvestors: 10, Rate: decimal.NewFromFloat(0.02)},
		{MinInvestors: 1, Rate: decimal.NewFromFloat(0.01)},
	}
	policy := domain.NewFeePolicy(tiers)
	if !policy.Rate(3).Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Rate(3) = %s, want 0.01", policy.Rate(3))
	}
	if !policy.Rate(12).Equal(decimal.NewFromFloat(0.02)) {
		t.Errorf("Rate(12) = %s, want 0.02", policy.Rate(12))
	}
}

func TestParseFeeTiers_Rejects(t *testing.T) {
	for _, bad := range []string{
		"",
		"5",          // missing rate
		"x:0.01",     // bad count
		"5:1.5",      // rate out of range
		"5:-0.01",    // negative rate
		"-1:0.01",    // negative count
		"5:notarate", // unparsable rate
	} {
		if _, err := domain.ParseFeeTiers(bad); err == nil {
			t.Errorf("ParseFeeTiers(%q) should fail", bad)
		}
	}
}
