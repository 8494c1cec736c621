package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// EntryType
// ──────────────────────────────────────────────────────────────────────────────

// EntryType enumerates fund ledger entry types for auditing.
type EntryType string

const (
	EntryDeposit      EntryType = "deposit"
	EntryWithdrawal   EntryType = "withdrawal"
	EntryProfitPayout EntryType = "profit_payout"
	EntryFee          EntryType = "fee"
)

// ──────────────────────────────────────────────────────────────────────────────
// Investor
// ──────────────────────────────────────────────────────────────────────────────

// Investor is a user's account inside the pooled fund. Invested holds the
// principal (moved only by approved deposits/withdrawals) and TotalProfit the
// cumulative net profit ever credited by the distribution engine. The two are
// kept separate so each stays independently auditable against the ledger.
//
// Role and IsActive are joined in from the users table; only active accounts
// with RoleInvestor participate in distribution.
type Investor struct {
	UserID      uuid.UUID       `json:"user_id"       db:"user_id"`
	Invested    decimal.Decimal `json:"invested"      db:"invested"`
	TotalProfit decimal.Decimal `json:"total_profit"  db:"total_profit"`
	// Last-cycle snapshot, overwritten on every distribution the investor
	// participated in.
	LastGross decimal.Decimal `json:"last_gross" db:"last_gross"`
	LastFee   decimal.Decimal `json:"last_fee"   db:"last_fee"`
	LastNet   decimal.Decimal `json:"last_net"   db:"last_net"`

	Role      UserRole  `json:"role"       db:"role"`
	IsActive  bool      `json:"is_active"  db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Balance returns the investor's current total balance (principal + cumulative
// net profit). This is the quantity used for pro-rata apportioning.
func (i *Investor) Balance() decimal.Decimal {
	return i.Invested.Add(i.TotalProfit)
}

// Participates reports whether the investor takes part in profit distribution:
// an active, ordinary investor with a strictly positive balance. Zero and
// negative balances are excluded from the share denominator so they can never
// produce division artifacts or negative allocations.
func (i *Investor) Participates() bool {
	return i.IsActive && i.Role == RoleInvestor && i.Balance().IsPositive()
}

// ──────────────────────────────────────────────────────────────────────────────
// LedgerEntry
// ──────────────────────────────────────────────────────────────────────────────

// LedgerEntry is one immutable, append-only row of an investor's fund history.
// Amounts are signed: deposits and payouts positive, withdrawals negative.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	UserID    uuid.UUID       `json:"user_id"    db:"user_id"`
	Date      string          `json:"date"       db:"date"` // accounting day, YYYY-MM-DD
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	Type      EntryType       `json:"type"       db:"type"`
	RefID     *uuid.UUID      `json:"ref_id"     db:"ref_id"` // funding request or daily record id
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// SumEntries adds up the signed amounts of a ledger slice. By the balance
// invariant the result equals Invested + TotalProfit for a consistent account.
func SumEntries(entries []*LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// CheckLedger reports whether the investor's balance components reconcile with
// the signed sum of its ledger entries, within the given absolute tolerance.
func (i *Investor) CheckLedger(entries []*LedgerEntry, tolerance decimal.Decimal) bool {
	diff := i.Balance().Sub(SumEntries(entries)).Abs()
	return diff.LessThanOrEqual(tolerance)
}

// ──────────────────────────────────────────────────────────────────────────────
// FundingRequest
// ──────────────────────────────────────────────────────────────────────────────

// RequestKind distinguishes deposit from withdrawal requests.
type RequestKind string

const (
	RequestDeposit  RequestKind = "deposit"
	RequestWithdraw RequestKind = "withdraw"
)

// RequestStatus represents the lifecycle of a funding request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// FundingRequest is submitted by an investor and reviewed by finance/admin.
// Amount is what the investor asked for; Applied is what was actually booked
// on approval (differs for withdrawals clamped at the principal floor) and
// stays NULL until review.
type FundingRequest struct {
	ID          uuid.UUID        `json:"id"           db:"id"`
	UserID      uuid.UUID        `json:"user_id"      db:"user_id"`
	Kind        RequestKind      `json:"kind"         db:"kind"`
	Amount      decimal.Decimal  `json:"amount"       db:"amount"`
	Applied     *decimal.Decimal `json:"applied"      db:"applied"`
	Status      RequestStatus    `json:"status"       db:"status"`
	Note        string           `json:"note"         db:"note"`
	ReviewedBy  *uuid.UUID       `json:"reviewed_by"  db:"reviewed_by"`
	ReviewNote  string           `json:"review_note"  db:"review_note"`
	RequestedAt time.Time        `json:"requested_at" db:"requested_at"`
	ReviewedAt  *time.Time       `json:"reviewed_at"  db:"reviewed_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ProfitGoal
// ──────────────────────────────────────────────────────────────────────────────

// ProfitGoal is an investor-defined cumulative profit target. The alert
// service flips Reached when TotalProfit crosses Target after a distribution.
type ProfitGoal struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	UserID    uuid.UUID       `json:"user_id"    db:"user_id"`
	Target    decimal.Decimal `json:"target"     db:"target"`
	Reached   bool            `json:"reached"    db:"reached"`
	ReachedAt *time.Time      `json:"reached_at" db:"reached_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
