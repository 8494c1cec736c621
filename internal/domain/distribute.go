package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// DayInput / DayResolution — value objects for the distribution engine
// ──────────────────────────────────────────────────────────────────────────────

// DayInput carries everything the engine needs to resolve one accounting day.
// The caller guarantees Bets holds every settled, unprocessed wager for Date
// and nothing else; Prior is the most recent daily record (nil on day 1).
type DayInput struct {
	Date      string
	Investors []*Investor
	Bets      []*Bet
	Prior     *DailyRecord
	Policy    *FeePolicy
}

// Allocation is one investor's slice of a resolved day. Gross may be negative
// on a loss day; Fee is always zero then. An allocation is emitted for every
// active ordinary investor — including zero ones — so the ledger documents
// that a distribution cycle ran for them.
type Allocation struct {
	UserID uuid.UUID       `json:"user_id"`
	Share  decimal.Decimal `json:"share"` // balance share fraction, 0 for non-participants
	Gross  decimal.Decimal `json:"gross"`
	Fee    decimal.Decimal `json:"fee"`
	Net    decimal.Decimal `json:"net"`
}

// DayResolution is the engine's complete output: the new immutable daily
// record, per-investor allocations, and the aggregates the stats row needs.
// Applying it to storage is the service layer's job; the engine itself
// mutates nothing.
type DayResolution struct {
	Record      *DailyRecord
	Allocations []Allocation
	Net         decimal.Decimal // Σ allocation net
	Fees        decimal.Decimal // Σ allocation fee
	Unallocated decimal.Decimal // profit with no positive-balance participant to take it
	Turnover    decimal.Decimal
	BetIDs      []uuid.UUID
}

// ──────────────────────────────────────────────────────────────────────────────
// DistributeDay — the profit-distribution core
// ──────────────────────────────────────────────────────────────────────────────

// DistributeDay resolves one accounting day: sums gross profit and turnover
// over the input wagers, apportions the result across active investors in
// proportion to their current balance, deducts the tiered platform fee on
// profitable days, and produces the daily record plus per-investor allocations.
//
// Pure function — no I/O, no mutation of its inputs. All precondition
// violations fail fast with a named sentinel error before anything is computed,
// so a failed call can never leave collections half-updated.
//
// Fee rule: the platform takes its cut only from positive gross profit.
// Losses are apportioned pro-rata undiscounted — investors absorb them in
// proportion to balance share.
func DistributeDay(in DayInput) (*DayResolution, error) {
	// ── Preconditions ────────────────────────────────────────────────────────
	if !ValidDate(in.Date) {
		return nil, fmt.Errorf("distribute: bad date %q: %w", in.Date, ErrDateMismatch)
	}
	if len(in.Investors) == 0 {
		return nil, ErrNoInvestors
	}
	if len(in.Bets) == 0 {
		return nil, ErrNothingToResolve
	}
	for _, b := range in.Bets {
		if b.Status == BetStatusPending {
			return nil, fmt.Errorf("distribute: bet %s: %w", b.ID, ErrPendingInInput)
		}
		if b.Date != in.Date {
			return nil, fmt.Errorf("distribute: bet %s has date %s, want %s: %w",
				b.ID, b.Date, in.Date, ErrDateMismatch)
		}
		if b.Processed {
			return nil, fmt.Errorf("distribute: bet %s: %w", b.ID, ErrAlreadyProcessed)
		}
	}

	// ── Aggregate the day's wagers ───────────────────────────────────────────
	gross := decimal.Zero
	turnover := decimal.Zero
	betIDs := make([]uuid.UUID, 0, len(in.Bets))
	for _, b := range in.Bets {
		p, err := b.SettledProfit()
		if err != nil {
			return nil, fmt.Errorf("distribute: bet %s profit: %w", b.ID, err)
		}
		gross = gross.Add(p)
		turnover = turnover.Add(b.Stake)
		betIDs = append(betIDs, b.ID)
	}

	// ── Bank continuity ──────────────────────────────────────────────────────
	// Day 1 bootstraps from current total principal; afterwards every record
	// chains off the previous one.
	var bankStart decimal.Decimal
	day := 1
	if in.Prior != nil {
		bankStart = in.Prior.BankEnd
		day = in.Prior.Day + 1
	} else {
		for _, inv := range in.Investors {
			bankStart = bankStart.Add(inv.Invested)
		}
	}

	// ── Balance shares ───────────────────────────────────────────────────────
	activeCount := 0
	shareBase := decimal.Zero
	for _, inv := range in.Investors {
		if inv.IsActive && inv.Role == RoleInvestor {
			activeCount++
		}
		if inv.Participates() {
			shareBase = shareBase.Add(inv.Balance())
		}
	}

	feeRate := in.Policy.Rate(activeCount)
	takeFee := gross.IsPositive()

	res := &DayResolution{
		Turnover: turnover,
		BetIDs:   betIDs,
	}

	for _, inv := range in.Investors {
		if !inv.IsActive || inv.Role != RoleInvestor {
			continue
		}
		alloc := Allocation{UserID: inv.UserID}
		if inv.Participates() && shareBase.IsPositive() {
			alloc.Share = inv.Balance().Div(shareBase)
			alloc.Gross = gross.Mul(alloc.Share)
			if takeFee {
				alloc.Fee = alloc.Gross.Mul(feeRate)
			}
			alloc.Net = alloc.Gross.Sub(alloc.Fee)
		}
		res.Net = res.Net.Add(alloc.Net)
		res.Fees = res.Fees.Add(alloc.Fee)
		res.Allocations = append(res.Allocations, alloc)
	}

	// No positive-balance participant: the day's result has nowhere to go and
	// accumulates on the stats row until participation resumes.
	if shareBase.IsZero() || shareBase.IsNegative() {
		res.Unallocated = gross
	}

	res.Record = &DailyRecord{
		ID:          uuid.New(),
		Day:         day,
		Date:        in.Date,
		GrossProfit: gross,
		Turnover:    turnover,
		NumBets:     len(in.Bets),
		BankStart:   bankStart,
		BankEnd:     bankStart.Add(gross),
		Net:         res.Net,
		Fees:        res.Fees,
		FeeRate:     feeRate,
		CreatedAt:   time.Now().UTC(),
	}
	return res, nil
}
