package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

// BetRepository handles all database operations for Bets.
type BetRepository struct {
	db *sqlx.DB
}

// NewBetRepository creates a new BetRepository.
func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// Create inserts a new pending wager.
func (r *BetRepository) Create(ctx context.Context, b *domain.Bet) error {
	query := `
		INSERT INTO bets
			(id, group_id, date, label, stake, odds, status, profit, processed, placed_at)
		VALUES
			(:id, :group_id, :date, :label, :stake, :odds, :status, :profit, :processed, :placed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bet_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a wager by its primary key.
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	var b domain.Bet
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("bet_repo.GetByID: %w", err)
	}
	return &b, nil
}

// GetUnprocessedSettled returns every settled, not-yet-processed wager for a
// date — exactly the resolution input set.
func (r *BetRepository) GetUnprocessedSettled(ctx context.Context, date string) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets, `
		SELECT * FROM bets
		WHERE date = $1 AND status <> 'pending' AND processed = false
		ORDER BY placed_at ASC`,
		date)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetUnprocessedSettled: %w", err)
	}
	return bets, nil
}

// HasPending reports whether the date still has unsettled wagers. The
// scheduler will not resolve a day while an outcome is outstanding.
func (r *BetRepository) HasPending(ctx context.Context, date string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM bets WHERE date = $1 AND status = 'pending'`, date)
	if err != nil {
		return false, fmt.Errorf("bet_repo.HasPending: %w", err)
	}
	return n > 0, nil
}

// ResolvableDates returns past accounting days that carry settled, unprocessed
// wagers and no pending ones, oldest first.
func (r *BetRepository) ResolvableDates(ctx context.Context, before string) ([]string, error) {
	var dates []string
	err := r.db.SelectContext(ctx, &dates, `
		SELECT DISTINCT date FROM bets b
		WHERE date < $1
		  AND status <> 'pending' AND processed = false
		  AND NOT EXISTS (SELECT 1 FROM bets p WHERE p.date = b.date AND p.status = 'pending')
		ORDER BY date ASC`,
		before)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ResolvableDates: %w", err)
	}
	return dates, nil
}

// Settle applies a terminal status and derived profit to a pending wager.
// The WHERE status='pending' guard makes settlement idempotent: a second call
// affects zero rows and surfaces ErrBetAlreadySettled.
func (r *BetRepository) Settle(ctx context.Context, id uuid.UUID, status domain.BetStatus, profit decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bets
		SET status      = $1,
		    profit      = $2,
		    resolved_at = now()
		WHERE id = $3 AND status = 'pending'`,
		string(status), profit, id)
	if err != nil {
		return fmt.Errorf("bet_repo.Settle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBetAlreadySettled
	}
	return nil
}

// Revert puts a settled wager back to pending, clearing profit and the
// settlement time. Only allowed before the wager is folded into a daily
// record: the processed=false guard protects immutable history.
func (r *BetRepository) Revert(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bets
		SET status      = 'pending',
		    profit      = NULL,
		    resolved_at = NULL
		WHERE id = $1 AND status <> 'pending' AND processed = false`,
		id)
	if err != nil {
		return fmt.Errorf("bet_repo.Revert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows: the id is unknown, the wager never left pending, or it
		// is already folded into a record. Look at the row to say which.
		var row struct {
			Status    string `db:"status"`
			Processed bool   `db:"processed"`
		}
		gerr := r.db.GetContext(ctx, &row,
			`SELECT status, processed FROM bets WHERE id = $1`, id)
		switch {
		case errors.Is(gerr, sql.ErrNoRows):
			return domain.ErrBetNotFound
		case gerr != nil:
			return fmt.Errorf("bet_repo.Revert: %w", gerr)
		case row.Processed:
			return domain.ErrBetProcessed
		default:
			return domain.ErrBetPending
		}
	}
	return nil
}

// MarkProcessed latches the processed flag for a set of wagers inside a
// transaction. Irreversible; there is no corresponding unset query anywhere.
func (r *BetRepository) MarkProcessed(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE bets SET processed = true WHERE id = ANY($1) AND processed = false`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("bet_repo.MarkProcessed: %w", err)
	}
	if n, _ := res.RowsAffected(); n != int64(len(ids)) {
		// Someone raced us on a subset; the whole transaction must roll back.
		return domain.ErrAlreadyProcessed
	}
	return nil
}

// List returns wagers newest first, optionally filtered by date, paginated.
func (r *BetRepository) List(ctx context.Context, date string, limit, offset int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	var err error
	if date != "" {
		err = r.db.SelectContext(ctx, &bets, `
			SELECT * FROM bets WHERE date = $1
			ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
			date, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &bets, `
			SELECT * FROM bets ORDER BY placed_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("bet_repo.List: %w", err)
	}
	return bets, nil
}

// GetByGroup returns the wagers sharing a group id (value + middle pairs).
func (r *BetRepository) GetByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE group_id = $1 ORDER BY placed_at ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetByGroup: %w", err)
	}
	return bets, nil
}
