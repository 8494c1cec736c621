package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditRecord is an immutable trail row written for every balance-affecting
// operation: funding approvals and rejections, and each distribution credit.
// BalanceBefore/BalanceAfter capture the investor's total balance around the
// mutation so the trail can reconstruct any account state without replaying
// the ledger.
type AuditRecord struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	UserID        uuid.UUID       `json:"user_id"        db:"user_id"`
	Action        string          `json:"action"         db:"action"`
	Amount        decimal.Decimal `json:"amount"         db:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"  db:"balance_after"`
	RefID         *uuid.UUID      `json:"ref_id"         db:"ref_id"` // request or daily record id
	Note          string          `json:"note"           db:"note"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}

// Audit actions.
const (
	AuditDepositApproved  = "deposit_approved"
	AuditWithdrawApproved = "withdraw_approved"
	AuditRequestRejected  = "request_rejected"
	AuditProfitCredited   = "profit_credited"
)
