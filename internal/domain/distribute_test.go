package domain_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

// tolerance for floating-point-style comparisons on currency magnitudes
var eps = decimal.New(1, -6) // 1e-6

func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}

// ── Fixture helpers ───────────────────────────────────────────────────────────

func investor(invested, profit int64) *domain.Investor {
	return &domain.Investor{
		UserID:      uuid.New(),
		Invested:    decimal.NewFromInt(invested),
		TotalProfit: decimal.NewFromInt(profit),
		Role:        domain.RoleInvestor,
		IsActive:    true,
	}
}

func settledBet(date string, stake, odds float64, status domain.BetStatus) *domain.Bet {
	b := &domain.Bet{
		ID:      uuid.New(),
		GroupID: uuid.New(),
		Date:    date,
		Stake:   decimal.NewFromFloat(stake),
		Odds:    decimal.NewFromFloat(odds),
		Status:  status,
	}
	if status.IsTerminal() {
		p, _ := domain.ComputeProfit(b.Stake, b.Odds, status)
		b.Profit = &p
	}
	return b
}

func onePercent(t *testing.T) *domain.FeePolicy {
	t.Helper()
	tiers, err := domain.ParseFeeTiers("1:0.01")
	if err != nil {
		t.Fatalf("ParseFeeTiers: %v", err)
	}
	return domain.NewFeePolicy(tiers)
}

func allocFor(t *testing.T, res *domain.DayResolution, id uuid.UUID) domain.Allocation {
	t.Helper()
	for _, a := range res.Allocations {
		if a.UserID == id {
			return a
		}
	}
	t.Fatalf("no allocation for investor %s", id)
	return domain.Allocation{}
}

// ── Spec scenario: single WON bet, 1 % fee ────────────────────────────────────
//
//	A balance 3000, B balance 2000; one bet WON stake=100 odds=2.1 → profit 110.
//	fees = 1.10, net = 108.90; A gets 108.90 × 3000/5000 = 65.34, B gets 43.56.
func TestDistributeDay_WonBetSplit(t *testing.T) {
	a := investor(3000, 0)
	b := investor(2000, 0)
	in := domain.DayInput{
		Date:      "2024-03-09",
		Investors: []*domain.Investor{a, b},
		Bets:      []*domain.Bet{settledBet("2024-03-09", 100, 2.1, domain.BetStatusWon)},
		Policy:    onePercent(t),
	}

	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}

	if !approxEqual(res.Record.GrossProfit, decimal.NewFromInt(110)) {
		t.Errorf("gross = %s, want 110", res.Record.GrossProfit)
	}
	if !approxEqual(res.Fees, decimal.NewFromFloat(1.10)) {
		t.Errorf("fees = %s, want 1.10", res.Fees)
	}
	if !approxEqual(res.Net, decimal.NewFromFloat(108.90)) {
		t.Errorf("net = %s, want 108.90", res.Net)
	}

	allocA := allocFor(t, res, a.UserID)
	allocB := allocFor(t, res, b.UserID)
	if !approxEqual(allocA.Net, decimal.NewFromFloat(65.34)) {
		t.Errorf("A net = %s, want 65.34", allocA.Net)
	}
	if !approxEqual(allocB.Net, decimal.NewFromFloat(43.56)) {
		t.Errorf("B net = %s, want 43.56", allocB.Net)
	}

	// Profit/fee split invariant
	if !approxEqual(res.Net.Add(res.Fees), res.Record.GrossProfit) {
		t.Errorf("net + fees = %s, want gross %s", res.Net.Add(res.Fees), res.Record.GrossProfit)
	}

	// Turnover / day bookkeeping
	if !res.Turnover.Equal(decimal.NewFromInt(100)) {
		t.Errorf("turnover = %s, want 100", res.Turnover)
	}
	if res.Record.Day != 1 {
		t.Errorf("day = %d, want 1 (no prior record)", res.Record.Day)
	}
	if !res.Record.BankStart.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("bankStart = %s, want 5000 (Σ invested)", res.Record.BankStart)
	}
	if !approxEqual(res.Record.BankEnd, decimal.NewFromInt(5110)) {
		t.Errorf("bankEnd = %s, want 5110", res.Record.BankEnd)
	}
}

// ── Spec scenario: single LOST bet — no fee, loss pro-rata ────────────────────
func TestDistributeDay_LostBetNoFee(t *testing.T) {
	a := investor(3000, 0)
	b := investor(2000, 0)
	in := domain.DayInput{
		Date:      "2024-03-09",
		Investors: []*domain.Investor{a, b},
		Bets:      []*domain.Bet{settledBet("2024-03-09", 100, 2.1, domain.BetStatusLost)},
		Policy:    onePercent(t),
	}

	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}

	if !res.Fees.IsZero() {
		t.Errorf("loss day fees = %s, want 0", res.Fees)
	}
	// Conservation under loss: distributed net equals gross exactly.
	if !approxEqual(res.Net, decimal.NewFromInt(-100)) {
		t.Errorf("net = %s, want -100", res.Net)
	}
	if !approxEqual(allocFor(t, res, a.UserID).Net, decimal.NewFromInt(-60)) {
		t.Errorf("A net = %s, want -60", allocFor(t, res, a.UserID).Net)
	}
	if !approxEqual(allocFor(t, res, b.UserID).Net, decimal.NewFromInt(-40)) {
		t.Errorf("B net = %s, want -40", allocFor(t, res, b.UserID).Net)
	}
}

// ── Proportional fairness: B1 = 2×B2 ⇒ net1 ≈ 2×net2 ─────────────────────────
func TestDistributeDay_ProportionalFairness(t *testing.T) {
	big := investor(4000, 0)
	small := investor(2000, 0)
	in := domain.DayInput{
		Date:      "2024-05-01",
		Investors: []*domain.Investor{big, small},
		Bets: []*domain.Bet{
			settledBet("2024-05-01", 300, 1.9, domain.BetStatusWon),
			settledBet("2024-05-01", 200, 2.4, domain.BetStatusHalfWon),
			settledBet("2024-05-01", 150, 2.0, domain.BetStatusLost),
		},
		Policy: onePercent(t),
	}

	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}
	netBig := allocFor(t, res, big.UserID).Net
	netSmall := allocFor(t, res, small.UserID).Net
	if !approxEqual(netBig, netSmall.Mul(decimal.NewFromInt(2))) {
		t.Errorf("2× balance should earn 2× net: big=%s small=%s", netBig, netSmall)
	}

	// gross = 270 + 140 − 150 = 260; fee = 2.60; net = 257.40
	if !approxEqual(res.Record.GrossProfit, decimal.NewFromInt(260)) {
		t.Errorf("gross = %s, want 260", res.Record.GrossProfit)
	}
	if !approxEqual(res.Net.Add(res.Fees), res.Record.GrossProfit) {
		t.Errorf("net+fees = %s, want %s", res.Net.Add(res.Fees), res.Record.GrossProfit)
	}
}

// ── Day chaining ──────────────────────────────────────────────────────────────
func TestDistributeDay_ChainsOffPriorRecord(t *testing.T) {
	prior := &domain.DailyRecord{
		Day:     7,
		Date:    "2024-05-01",
		BankEnd: decimal.NewFromInt(12345),
	}
	in := domain.DayInput{
		Date:      "2024-05-02",
		Investors: []*domain.Investor{investor(1000, 0)},
		Bets:      []*domain.Bet{settledBet("2024-05-02", 50, 3.0, domain.BetStatusWon)},
		Prior:     prior,
		Policy:    onePercent(t),
	}

	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}
	if res.Record.Day != 8 {
		t.Errorf("day = %d, want prior+1 = 8", res.Record.Day)
	}
	if !res.Record.BankStart.Equal(prior.BankEnd) {
		t.Errorf("bankStart = %s, want prior bankEnd %s", res.Record.BankStart, prior.BankEnd)
	}
	if !approxEqual(res.Record.BankEnd, res.Record.BankStart.Add(res.Record.GrossProfit)) {
		t.Errorf("bankEnd invariant broken: %s != %s + %s",
			res.Record.BankEnd, res.Record.BankStart, res.Record.GrossProfit)
	}
}

// ── Participation rules ───────────────────────────────────────────────────────

func TestDistributeDay_ExcludesInactiveAndStaff(t *testing.T) {
	active := investor(1000, 0)
	suspended := investor(1000, 0)
	suspended.IsActive = false
	operator := investor(1000, 0)
	operator.Role = domain.RoleAdmin

	in := domain.DayInput{
		Date:      "2024-06-01",
		Investors: []*domain.Investor{active, suspended, operator},
		Bets:      []*domain.Bet{settledBet("2024-06-01", 100, 2.0, domain.BetStatusWon)},
		Policy:    onePercent(t),
	}
	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}

	// Only the single active ordinary investor gets an allocation.
	if len(res.Allocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(res.Allocations))
	}
	if res.Allocations[0].UserID != active.UserID {
		t.Error("allocation went to the wrong investor")
	}
	// Whole net goes to the single participant: 100 × 0.99 = 99
	if !approxEqual(res.Allocations[0].Net, decimal.NewFromInt(99)) {
		t.Errorf("net = %s, want 99", res.Allocations[0].Net)
	}
}

func TestDistributeDay_ZeroBalanceGetsZeroAllocation(t *testing.T) {
	funded := investor(5000, 0)
	broke := investor(0, 0)

	in := domain.DayInput{
		Date:      "2024-06-02",
		Investors: []*domain.Investor{funded, broke},
		Bets:      []*domain.Bet{settledBet("2024-06-02", 100, 2.0, domain.BetStatusWon)},
		Policy:    onePercent(t),
	}
	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}

	// Zero-balance active investor still gets an (all-zero) allocation row
	// so a PROFIT_PAYOUT entry documents the cycle for it.
	zero := allocFor(t, res, broke.UserID)
	if !zero.Net.IsZero() || !zero.Share.IsZero() {
		t.Errorf("zero-balance investor should get zero allocation, got share=%s net=%s",
			zero.Share, zero.Net)
	}
	// And it must not dilute the funded investor.
	if !approxEqual(allocFor(t, res, funded.UserID).Net, decimal.NewFromInt(99)) {
		t.Errorf("funded net = %s, want 99", allocFor(t, res, funded.UserID).Net)
	}
}

func TestDistributeDay_NoPositiveShare_ProfitUnallocated(t *testing.T) {
	broke := investor(0, 0)
	in := domain.DayInput{
		Date:      "2024-06-03",
		Investors: []*domain.Investor{broke},
		Bets:      []*domain.Bet{settledBet("2024-06-03", 100, 2.0, domain.BetStatusWon)},
		Policy:    onePercent(t),
	}
	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}
	if !approxEqual(res.Unallocated, decimal.NewFromInt(100)) {
		t.Errorf("unallocated = %s, want full gross 100", res.Unallocated)
	}
	if !res.Net.IsZero() || !res.Fees.IsZero() {
		t.Errorf("nothing should be distributed: net=%s fees=%s", res.Net, res.Fees)
	}
}

// ── Precondition violations — fail fast, named errors ─────────────────────────

func TestDistributeDay_Preconditions(t *testing.T) {
	policy := onePercent(t)
	good := settledBet("2024-07-01", 100, 2.0, domain.BetStatusWon)

	t.Run("empty investor list", func(t *testing.T) {
		_, err := domain.DistributeDay(domain.DayInput{
			Date: "2024-07-01", Bets: []*domain.Bet{good}, Policy: policy,
		})
		if !errors.Is(err, domain.ErrNoInvestors) {
			t.Errorf("want ErrNoInvestors, got %v", err)
		}
	})

	t.Run("empty bet set signals nothing to resolve", func(t *testing.T) {
		_, err := domain.DistributeDay(domain.DayInput{
			Date: "2024-07-01", Investors: []*domain.Investor{investor(1000, 0)}, Policy: policy,
		})
		if !errors.Is(err, domain.ErrNothingToResolve) {
			t.Errorf("want ErrNothingToResolve, got %v", err)
		}
	})

	t.Run("pending bet in input", func(t *testing.T) {
		pending := settledBet("2024-07-01", 100, 2.0, domain.BetStatusPending)
		_, err := domain.DistributeDay(domain.DayInput{
			Date:      "2024-07-01",
			Investors: []*domain.Investor{investor(1000, 0)},
			Bets:      []*domain.Bet{good, pending},
			Policy:    policy,
		})
		if !errors.Is(err, domain.ErrPendingInInput) {
			t.Errorf("want ErrPendingInInput, got %v", err)
		}
	})

	t.Run("date mismatch", func(t *testing.T) {
		stray := settledBet("2024-07-02", 100, 2.0, domain.BetStatusWon)
		_, err := domain.DistributeDay(domain.DayInput{
			Date:      "2024-07-01",
			Investors: []*domain.Investor{investor(1000, 0)},
			Bets:      []*domain.Bet{good, stray},
			Policy:    policy,
		})
		if !errors.Is(err, domain.ErrDateMismatch) {
			t.Errorf("want ErrDateMismatch, got %v", err)
		}
	})

	t.Run("already processed bet", func(t *testing.T) {
		done := settledBet("2024-07-01", 100, 2.0, domain.BetStatusWon)
		done.Processed = true
		_, err := domain.DistributeDay(domain.DayInput{
			Date:      "2024-07-01",
			Investors: []*domain.Investor{investor(1000, 0)},
			Bets:      []*domain.Bet{done},
			Policy:    policy,
		})
		if !errors.Is(err, domain.ErrAlreadyProcessed) {
			t.Errorf("want ErrAlreadyProcessed, got %v", err)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := domain.DistributeDay(domain.DayInput{
			Date:      "not-a-date",
			Investors: []*domain.Investor{investor(1000, 0)},
			Bets:      []*domain.Bet{good},
			Policy:    policy,
		})
		if !errors.Is(err, domain.ErrDateMismatch) {
			t.Errorf("want ErrDateMismatch, got %v", err)
		}
	})
}

// ── Mixed half outcomes and group bets keep the split invariant ───────────────
func TestDistributeDay_SplitInvariantAcrossStatuses(t *testing.T) {
	group := uuid.New()
	value := settledBet("2024-08-01", 500, 2.05, domain.BetStatusHalfWon)
	middle := settledBet("2024-08-01", 480, 1.95, domain.BetStatusHalfLost)
	value.GroupID = group
	middle.GroupID = group

	in := domain.DayInput{
		Date: "2024-08-01",
		Investors: []*domain.Investor{
			investor(10000, 250), investor(7300, -120), investor(500, 0),
		},
		Bets: []*domain.Bet{
			value, middle,
			settledBet("2024-08-01", 200, 3.4, domain.BetStatusWon),
			settledBet("2024-08-01", 320, 1.72, domain.BetStatusVoid),
		},
		Policy: onePercent(t),
	}

	res, err := domain.DistributeDay(in)
	if err != nil {
		t.Fatalf("DistributeDay: %v", err)
	}
	if res.Record.NumBets != 4 {
		t.Errorf("numBets = %d, want 4", res.Record.NumBets)
	}
	if !approxEqual(res.Net.Add(res.Fees), res.Record.GrossProfit) {
		t.Errorf("net+fees = %s, want gross %s", res.Net.Add(res.Fees), res.Record.GrossProfit)
	}
	// Σ allocation nets must equal the record's distributed net.
	sum := decimal.Zero
	for _, a := range res.Allocations {
		sum = sum.Add(a.Net)
	}
	if !approxEqual(sum, res.Record.Net) {
		t.Errorf("Σ allocation net = %s, want record net %s", sum, res.Record.Net)
	}
	t.Logf("gross=%s fees=%s net=%s turnover=%s",
		res.Record.GrossProfit.StringFixed(4), res.Fees.StringFixed(4),
		res.Net.StringFixed(4), res.Turnover.StringFixed(4))
}
