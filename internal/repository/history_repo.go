package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/shopspring/decimal"
)

// HistoryRepository handles daily records and the single-row global stats.
// Daily records are insert-only: there is deliberately no UPDATE statement for
// them in this repository.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ── Daily records ─────────────────────────────────────────────────────────────

// Insert writes a new daily record inside a transaction. The unique index on
// date turns a concurrent double-resolution into ErrDayAlreadyResolved.
func (r *HistoryRepository) Insert(ctx context.Context, tx *sqlx.Tx, rec *domain.DailyRecord) error {
	query := `
		INSERT INTO daily_records
			(id, day, date, gross_profit, turnover, num_bets,
			 bank_start, bank_end, net, fees, fee_rate, created_at)
		VALUES
			(:id, :day, :date, :gross_profit, :turnover, :num_bets,
			 :bank_start, :bank_end, :net, :fees, :fee_rate, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDayAlreadyResolved
		}
		return fmt.Errorf("history_repo.Insert: %w", err)
	}
	return nil
}

// GetLatest returns the most recent daily record, or nil when the fund has no
// resolved day yet (day-1 bootstrap).
func (r *HistoryRepository) GetLatest(ctx context.Context) (*domain.DailyRecord, error) {
	var rec domain.DailyRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT * FROM daily_records ORDER BY day DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("history_repo.GetLatest: %w", err)
	}
	return &rec, nil
}

// GetByDate returns the record for one accounting day, or nil if unresolved.
func (r *HistoryRepository) GetByDate(ctx context.Context, date string) (*domain.DailyRecord, error) {
	var rec domain.DailyRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT * FROM daily_records WHERE date = $1`, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("history_repo.GetByDate: %w", err)
	}
	return &rec, nil
}

// List returns daily records newest first, paginated.
func (r *HistoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.DailyRecord, error) {
	var recs []*domain.DailyRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM daily_records ORDER BY day DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history_repo.List: %w", err)
	}
	return recs, nil
}

// ── Global stats ──────────────────────────────────────────────────────────────

// GetStats returns the single global stats row.
func (r *HistoryRepository) GetStats(ctx context.Context) (*domain.GlobalStats, error) {
	var s domain.GlobalStats
	err := r.db.GetContext(ctx, &s, `SELECT * FROM global_stats LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("history_repo.GetStats: %w", err)
	}
	return &s, nil
}

// ApplyResolution folds one day's aggregates into the stats row inside the
// resolution transaction.
func (r *HistoryRepository) ApplyResolution(ctx context.Context, tx *sqlx.Tx,
	net, turnover, unallocated, feeRate decimal.Decimal, numBets, activeInvestors int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE global_stats
		SET total_distributed = total_distributed + $1,
		    current_turnover  = current_turnover + $2,
		    unallocated       = unallocated + $3,
		    current_fee_rate  = $4,
		    total_bets_placed = total_bets_placed + $5,
		    active_investors  = $6,
		    updated_at        = now()`,
		net, turnover, unallocated, feeRate, numBets, activeInvestors)
	if err != nil {
		return fmt.Errorf("history_repo.ApplyResolution: %w", err)
	}
	return nil
}

// SetTotalInvested refreshes the principal aggregate inside a funding
// transaction.
func (r *HistoryRepository) SetTotalInvested(ctx context.Context, tx *sqlx.Tx, total decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE global_stats SET total_invested = $1, updated_at = now()`, total)
	if err != nil {
		return fmt.Errorf("history_repo.SetTotalInvested: %w", err)
	}
	return nil
}

// SetActiveInvestors refreshes the participant count (admin suspend/activate).
func (r *HistoryRepository) SetActiveInvestors(ctx context.Context, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE global_stats SET active_investors = $1, updated_at = now()`, count)
	if err != nil {
		return fmt.Errorf("history_repo.SetActiveInvestors: %w", err)
	}
	return nil
}

// CountActiveInvestors counts active ordinary investors, the fee-tier driver.
func (r *HistoryRepository) CountActiveInvestors(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*)
		FROM investors i JOIN users u ON u.id = i.user_id
		WHERE u.is_active = true AND u.role = 'investor'`)
	if err != nil {
		return 0, fmt.Errorf("history_repo.CountActiveInvestors: %w", err)
	}
	return n, nil
}
