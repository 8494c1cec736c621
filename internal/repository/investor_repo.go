package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

// investorColumns joins the per-user balance fields with the user flags the
// distribution engine filters on.
const investorColumns = `
	i.user_id, i.invested, i.total_profit,
	i.last_gross, i.last_fee, i.last_net,
	u.role, u.is_active, i.created_at, i.updated_at`

// InvestorRepository handles all database operations for investor accounts,
// their append-only fund ledger, and the audit trail.
type InvestorRepository struct {
	db *sqlx.DB
}

// NewInvestorRepository creates a new InvestorRepository.
func NewInvestorRepository(db *sqlx.DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// Create inserts a zeroed investor account for a user inside an existing
// transaction (called at registration).
func (r *InvestorRepository) Create(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investors (user_id, invested, total_profit, last_gross, last_fee, last_net, created_at, updated_at)
		VALUES ($1, 0, 0, 0, 0, 0, now(), now())`,
		userID)
	if err != nil {
		return fmt.Errorf("investor_repo.Create: %w", err)
	}
	return nil
}

// GetByUserID fetches one investor account with its user flags.
func (r *InvestorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Investor, error) {
	var inv domain.Investor
	err := r.db.GetContext(ctx, &inv, `
		SELECT `+investorColumns+`
		FROM investors i JOIN users u ON u.id = i.user_id
		WHERE i.user_id = $1`,
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvestorNotFound
		}
		return nil, fmt.Errorf("investor_repo.GetByUserID: %w", err)
	}
	return &inv, nil
}

// ListAll returns every investor account. The distribution engine needs the
// complete collection; pagination would silently understate balance shares.
func (r *InvestorRepository) ListAll(ctx context.Context) ([]*domain.Investor, error) {
	var invs []*domain.Investor
	err := r.db.SelectContext(ctx, &invs, `
		SELECT `+investorColumns+`
		FROM investors i JOIN users u ON u.id = i.user_id
		ORDER BY i.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("investor_repo.ListAll: %w", err)
	}
	return invs, nil
}

// LockForUpdate locks one investor row inside a transaction and returns its
// current principal and cumulative profit. Prevents a funding approval racing
// another mutation on the same account.
func (r *InvestorRepository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (invested, totalProfit decimal.Decimal, err error) {
	row := tx.QueryRowxContext(ctx,
		`SELECT invested, total_profit FROM investors WHERE user_id = $1 FOR UPDATE`,
		userID)
	if err = row.Scan(&invested, &totalProfit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrInvestorNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("investor_repo.LockForUpdate: %w", err)
	}
	return invested, totalProfit, nil
}

// SetInvested writes a new principal value inside a transaction (funding
// approvals; the caller computed the clamped value under FOR UPDATE).
func (r *InvestorRepository) SetInvested(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, invested decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE investors SET invested = $1, updated_at = now() WHERE user_id = $2`,
		invested, userID)
	if err != nil {
		return fmt.Errorf("investor_repo.SetInvested: %w", err)
	}
	return nil
}

// ApplyAllocation credits one distribution allocation inside a transaction:
// bumps the cumulative profit and overwrites the last-cycle snapshot.
func (r *InvestorRepository) ApplyAllocation(ctx context.Context, tx *sqlx.Tx, a domain.Allocation) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE investors
		SET total_profit = total_profit + $1,
		    last_gross   = $2,
		    last_fee     = $3,
		    last_net     = $1,
		    updated_at   = now()
		WHERE user_id = $4`,
		a.Net, a.Gross, a.Fee, a.UserID)
	if err != nil {
		return fmt.Errorf("investor_repo.ApplyAllocation: %w", err)
	}
	return nil
}

// TotalInvested sums principal across all accounts (day-1 bank bootstrap and
// the stats row).
func (r *InvestorRepository) TotalInvested(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(invested), 0) FROM investors`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("investor_repo.TotalInvested: %w", err)
	}
	return total, nil
}

// ── Fund ledger ───────────────────────────────────────────────────────────────

// AppendEntry writes one append-only fund ledger row inside a transaction.
// Nothing ever updates or deletes these rows.
func (r *InvestorRepository) AppendEntry(ctx context.Context, tx *sqlx.Tx, e *domain.LedgerEntry) error {
	query := `
		INSERT INTO fund_ledger (id, user_id, date, amount, type, ref_id, created_at)
		VALUES (:id, :user_id, :date, :amount, :type, :ref_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("investor_repo.AppendEntry: %w", err)
	}
	return nil
}

// GetEntries returns an investor's ledger, newest first, paginated.
func (r *InvestorRepository) GetEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM fund_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("investor_repo.GetEntries: %w", err)
	}
	return entries, nil
}

// GetAllEntries returns an investor's complete ledger in insertion order,
// for balance reconciliation.
func (r *InvestorRepository) GetAllEntries(ctx context.Context, userID uuid.UUID) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM fund_ledger WHERE user_id = $1 ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("investor_repo.GetAllEntries: %w", err)
	}
	return entries, nil
}

// ── Audit trail ───────────────────────────────────────────────────────────────

// LogAudit inserts an audit record inside a transaction.
func (r *InvestorRepository) LogAudit(ctx context.Context, tx *sqlx.Tx, rec *domain.AuditRecord) error {
	query := `
		INSERT INTO fund_audit
			(id, user_id, action, amount, balance_before, balance_after, ref_id, note, created_at)
		VALUES
			(:id, :user_id, :action, :amount, :balance_before, :balance_after, :ref_id, :note, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("investor_repo.LogAudit: %w", err)
	}
	return nil
}

// GetAuditTrail returns recent audit records for one investor, newest first.
func (r *InvestorRepository) GetAuditTrail(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.AuditRecord, error) {
	var recs []*domain.AuditRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM fund_audit
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("investor_repo.GetAuditTrail: %w", err)
	}
	return recs, nil
}
