package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ortakkasa/poolfund/internal/domain"
)

// GoalRepository handles investor profit goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new profit goal.
func (r *GoalRepository) Create(ctx context.Context, g *domain.ProfitGoal) error {
	query := `
		INSERT INTO profit_goals (id, user_id, target, reached, created_at)
		VALUES (:id, :user_id, :target, :reached, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("goal_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches one goal.
func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfitGoal, error) {
	var g domain.ProfitGoal
	err := r.db.GetContext(ctx, &g, `SELECT * FROM profit_goals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("goal_repo.GetByID: %w", err)
	}
	return &g, nil
}

// ListByUser returns all goals for one investor.
func (r *GoalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProfitGoal, error) {
	var goals []*domain.ProfitGoal
	err := r.db.SelectContext(ctx, &goals,
		`SELECT * FROM profit_goals WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("goal_repo.ListByUser: %w", err)
	}
	return goals, nil
}

// ListOpenByUser returns the investor's not-yet-reached goals.
func (r *GoalRepository) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProfitGoal, error) {
	var goals []*domain.ProfitGoal
	err := r.db.SelectContext(ctx, &goals,
		`SELECT * FROM profit_goals WHERE user_id = $1 AND reached = false ORDER BY target ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("goal_repo.ListOpenByUser: %w", err)
	}
	return goals, nil
}

// MarkReached flips the reached latch. The reached=false guard keeps the
// flip one-shot under concurrent evaluations.
func (r *GoalRepository) MarkReached(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profit_goals
		SET reached = true, reached_at = now()
		WHERE id = $1 AND reached = false`,
		id)
	if err != nil {
		return fmt.Errorf("goal_repo.MarkReached: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal (investor-initiated).
func (r *GoalRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM profit_goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("goal_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}
