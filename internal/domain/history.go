package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// DailyRecord
// ──────────────────────────────────────────────────────────────────────────────

// DailyRecord is the immutable ledger entry for one resolved accounting day.
// Once written it is never mutated; a correction takes a new day's record that
// offsets the mistake.
//
// Invariants:
//
//	BankEnd   = BankStart + GrossProfit
//	Net + Fees = GrossProfit           (when GrossProfit > 0)
//	Fees = 0, Net = GrossProfit        (when GrossProfit ≤ 0)
//	Day = prior.Day + 1, BankStart = prior.BankEnd
type DailyRecord struct {
	ID          uuid.UUID       `json:"id"           db:"id"`
	Day         int             `json:"day"          db:"day"` // 1-based sequence number
	Date        string          `json:"date"         db:"date"`
	GrossProfit decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	Turnover    decimal.Decimal `json:"turnover"     db:"turnover"`
	NumBets     int             `json:"num_bets"     db:"num_bets"`
	BankStart   decimal.Decimal `json:"bank_start"   db:"bank_start"`
	BankEnd     decimal.Decimal `json:"bank_end"     db:"bank_end"`
	Net         decimal.Decimal `json:"net"          db:"net"`  // distributed net profit
	Fees        decimal.Decimal `json:"fees"         db:"fees"` // collected platform fees
	FeeRate     decimal.Decimal `json:"fee_rate"     db:"fee_rate"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// GlobalStats
// ──────────────────────────────────────────────────────────────────────────────

// GlobalStats is the single-row aggregate snapshot of the fund.
// Unallocated accumulates profit from cycles where no investor held a positive
// balance share; it stays in the bank until participation resumes.
type GlobalStats struct {
	TotalInvested     decimal.Decimal `json:"total_invested"      db:"total_invested"`
	TotalDistributed  decimal.Decimal `json:"total_distributed"   db:"total_distributed"`
	ActiveInvestors   int             `json:"active_investors"    db:"active_investors"`
	CurrentFeeRate    decimal.Decimal `json:"current_fee_rate"    db:"current_fee_rate"`
	CurrentTurnover   decimal.Decimal `json:"current_turnover"    db:"current_turnover"`
	TotalBetsPlaced   int             `json:"total_bets_placed"   db:"total_bets_placed"`
	Unallocated       decimal.Decimal `json:"unallocated"         db:"unallocated"`
	UpdatedAt         time.Time       `json:"updated_at"          db:"updated_at"`
}
