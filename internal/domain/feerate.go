package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// FeePolicy — tiered platform fee keyed by active-investor count
// ──────────────────────────────────────────────────────────────────────────────

// FeeTier maps a minimum active-investor count to a fee rate.
type FeeTier struct {
	MinInvestors int             `json:"min_investors"`
	Rate         decimal.Decimal `json:"rate"` // fraction in [0,1]
}

// FeePolicy is a pure, total function from active-investor count to fee rate.
// Tier breakpoints are a business parameter, loaded from configuration; rates
// are free per tier (the schedule is not forced monotonic).
type FeePolicy struct {
	tiers []FeeTier // sorted by MinInvestors ascending
}

// NewFeePolicy builds a policy from tiers. Tiers are sorted by MinInvestors;
// an empty slice yields a zero-rate policy.
func NewFeePolicy(tiers []FeeTier) *FeePolicy {
	sorted := make([]FeeTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinInvestors < sorted[j].MinInvestors
	})
	return &FeePolicy{tiers: sorted}
}

// Rate returns the fee rate for the given active-investor count. Total for any
// count: below the first tier it clamps to the first tier's rate, above the
// last to the last tier's. No side effects, no failure modes.
func (p *FeePolicy) Rate(activeInvestors int) decimal.Decimal {
	if len(p.tiers) == 0 {
		return decimal.Zero
	}
	rate := p.tiers[0].Rate
	for _, t := range p.tiers {
		if activeInvestors < t.MinInvestors {
			break
		}
		rate = t.Rate
	}
	return rate
}

// Tiers returns a copy of the schedule, for dashboards and config echo.
func (p *FeePolicy) Tiers() []FeeTier {
	out := make([]FeeTier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Config parsing
// ──────────────────────────────────────────────────────────────────────────────

// ParseFeeTiers parses a schedule of the form "1:0.01,5:0.012,10:0.015".
// Each element is minInvestors:rate; rates must lie in [0,1).
func ParseFeeTiers(s string) ([]FeeTier, error) {
	var tiers []FeeTier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("fee tier %q: want minInvestors:rate", part)
		}
		min, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil || min < 0 {
			return nil, fmt.Errorf("fee tier %q: invalid investor count", part)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("fee tier %q: invalid rate: %w", part, err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("fee tier %q: rate must be in [0,1)", part)
		}
		tiers = append(tiers, FeeTier{MinInvestors: min, Rate: rate})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("fee tier schedule is empty")
	}
	return tiers, nil
}
