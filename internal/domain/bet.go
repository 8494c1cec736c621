package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BetStatus represents the current state of a wager placed by the fund.
type BetStatus string

const (
	BetStatusPending  BetStatus = "pending"   // outcome not known yet
	BetStatusWon      BetStatus = "won"       // full win at the recorded odds
	BetStatusLost     BetStatus = "lost"      // full stake lost
	BetStatusVoid     BetStatus = "void"      // stake returned, zero profit
	BetStatusHalfWon  BetStatus = "half_won"  // asian-handicap half win
	BetStatusHalfLost BetStatus = "half_lost" // asian-handicap half loss
)

// IsValid reports whether s is one of the known statuses.
func (s BetStatus) IsValid() bool {
	switch s {
	case BetStatusPending, BetStatusWon, BetStatusLost,
		BetStatusVoid, BetStatusHalfWon, BetStatusHalfLost:
		return true
	}
	return false
}

// IsTerminal reports whether s is a settled outcome.
func (s BetStatus) IsTerminal() bool {
	return s.IsValid() && s != BetStatusPending
}

// DateLayout is the accounting-day format used throughout the ledger.
const DateLayout = "2006-01-02"

// ValidDate reports whether date is a well-formed YYYY-MM-DD day.
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Profit rule
// ──────────────────────────────────────────────────────────────────────────────

var two = decimal.NewFromInt(2)

// ComputeProfit is the pure profit-by-status rule for a single wager:
//
//	won:       stake × (odds − 1)
//	lost:      −stake
//	void:      0
//	half_won:  stake × (odds − 1) / 2
//	half_lost: −stake / 2
//
// Returns ErrBetPending for a pending wager — profit must never be read
// before settlement — and ErrInvalidStatus for unknown statuses.
// The result is floored to 4 decimal places (matching DB DECIMAL(18,4)).
func ComputeProfit(stake, odds decimal.Decimal, status BetStatus) (decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	switch status {
	case BetStatusWon:
		return stake.Mul(odds.Sub(one)).RoundDown(4), nil
	case BetStatusLost:
		return stake.Neg().RoundDown(4), nil
	case BetStatusVoid:
		return decimal.Zero, nil
	case BetStatusHalfWon:
		return stake.Mul(odds.Sub(one)).Div(two).RoundDown(4), nil
	case BetStatusHalfLost:
		return stake.Div(two).Neg().RoundDown(4), nil
	case BetStatusPending:
		return decimal.Zero, ErrBetPending
	default:
		return decimal.Zero, ErrInvalidStatus
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Bet
// ──────────────────────────────────────────────────────────────────────────────

// Bet represents one wager placed with pooled fund capital. Bets placed
// together (e.g. a value bet and its middle hedge) share a GroupID. Profit is
// derived from stake/odds/status at settlement and stays NULL while pending.
// Processed latches true exactly once, when the bet is folded into a daily
// record — the guard against double counting.
type Bet struct {
	ID         uuid.UUID        `json:"id"          db:"id"`
	GroupID    uuid.UUID        `json:"group_id"    db:"group_id"`
	Date       string           `json:"date"        db:"date"` // accounting day, YYYY-MM-DD
	Label      string           `json:"label"       db:"label"`
	Stake      decimal.Decimal  `json:"stake"       db:"stake"`
	Odds       decimal.Decimal  `json:"odds"        db:"odds"`
	Status     BetStatus        `json:"status"      db:"status"`
	Profit     *decimal.Decimal `json:"profit"      db:"profit"`
	Processed  bool             `json:"processed"   db:"processed"`
	PlacedAt   time.Time        `json:"placed_at"   db:"placed_at"`
	ResolvedAt *time.Time       `json:"resolved_at" db:"resolved_at"`
}

// IsSettled returns true once the wager has a terminal status.
func (b *Bet) IsSettled() bool {
	return b.Status.IsTerminal()
}

// SettledProfit returns the wager's recorded profit. Falls back to the pure
// rule when the derived column was not loaded. Errors for pending bets.
func (b *Bet) SettledProfit() (decimal.Decimal, error) {
	if b.Status == BetStatusPending {
		return decimal.Zero, ErrBetPending
	}
	if b.Profit != nil {
		return *b.Profit, nil
	}
	return ComputeProfit(b.Stake, b.Odds, b.Status)
}

// PlaceBetRequest carries the validated inputs for recording a new wager.
type PlaceBetRequest struct {
	GroupID uuid.UUID
	Date    string
	Label   string
	Stake   decimal.Decimal
	Odds    decimal.Decimal
}
