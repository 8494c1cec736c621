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

// FundingRepository handles deposit/withdraw requests.
type FundingRepository struct {
	db *sqlx.DB
}

// NewFundingRepository creates a new FundingRepository.
func NewFundingRepository(db *sqlx.DB) *FundingRepository {
	return &FundingRepository{db: db}
}

// Create inserts a new pending funding request.
func (r *FundingRepository) Create(ctx context.Context, req *domain.FundingRequest) error {
	query := `
		INSERT INTO funding_requests
			(id, user_id, kind, amount, status, note, requested_at)
		VALUES
			(:id, :user_id, :kind, :amount, :status, :note, :requested_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("funding_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a funding request.
func (r *FundingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FundingRequest, error) {
	var req domain.FundingRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM funding_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("funding_repo.GetByID: %w", err)
	}
	return &req, nil
}

// LockPending locks a request row inside a transaction and returns it only if
// it is still pending. A reviewed request yields ErrRequestNotPending — this
// is what makes approval idempotent per request id.
func (r *FundingRepository) LockPending(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.FundingRequest, error) {
	var req domain.FundingRequest
	err := tx.GetContext(ctx, &req,
		`SELECT * FROM funding_requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("funding_repo.LockPending: %w", err)
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}
	return &req, nil
}

// MarkReviewed finalises a request inside a transaction. applied carries the
// actually-booked amount on approval and is NULL on rejection. The status
// guard backs up LockPending against lost updates.
func (r *FundingRepository) MarkReviewed(ctx context.Context, tx *sqlx.Tx,
	id uuid.UUID, status domain.RequestStatus, applied *decimal.Decimal,
	reviewer uuid.UUID, note string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE funding_requests
		SET status      = $1,
		    applied     = $2,
		    reviewed_by = $3,
		    review_note = $4,
		    reviewed_at = now()
		WHERE id = $5 AND status = 'pending'`,
		string(status), applied, reviewer, note, id)
	if err != nil {
		return fmt.Errorf("funding_repo.MarkReviewed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRequestNotPending
	}
	return nil
}

// ListByStatus returns paginated requests, status="" meaning all.
func (r *FundingRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*domain.FundingRequest, error) {
	var reqs []*domain.FundingRequest
	var err error
	if status != "" {
		err = r.db.SelectContext(ctx, &reqs, `
			SELECT * FROM funding_requests
			WHERE status = $1
			ORDER BY requested_at DESC
			LIMIT $2 OFFSET $3`,
			status, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &reqs, `
			SELECT * FROM funding_requests
			ORDER BY requested_at DESC
			LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("funding_repo.ListByStatus: %w", err)
	}
	return reqs, nil
}

// ListByUser returns one investor's requests, newest first, paginated.
func (r *FundingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FundingRequest, error) {
	var reqs []*domain.FundingRequest
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM funding_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("funding_repo.ListByUser: %w", err)
	}
	return reqs, nil
}
