package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/shopspring/decimal"
)

// BetService records, settles, and reverts the fund's wagers. Bets are
// admin-only: investors never place them, they only share the results.
type BetService struct {
	betRepo *repository.BetRepository
}

// NewBetService creates a BetService.
func NewBetService(betRepo *repository.BetRepository) *BetService {
	return &BetService{betRepo: betRepo}
}

// Place records a new pending wager against an accounting day. GroupID ties
// hedged legs together; a zero GroupID gets a fresh one so every bet belongs
// to some group.
func (s *BetService) Place(ctx context.Context, req domain.PlaceBetRequest) (*domain.Bet, error) {
	if !domain.ValidDate(req.Date) {
		return nil, fmt.Errorf("bet_service.Place: bad date %q: %w", req.Date, domain.ErrDateMismatch)
	}
	if !req.Stake.IsPositive() {
		return nil, fmt.Errorf("bet_service.Place: stake: %w", domain.ErrInvalidAmount)
	}
	if req.Odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("bet_service.Place: odds must exceed 1: %w", domain.ErrInvalidAmount)
	}

	groupID := req.GroupID
	if groupID == uuid.Nil {
		groupID = uuid.New()
	}

	bet := &domain.Bet{
		ID:       uuid.New(),
		GroupID:  groupID,
		Date:     req.Date,
		Label:    req.Label,
		Stake:    req.Stake,
		Odds:     req.Odds,
		Status:   domain.BetStatusPending,
		PlacedAt: time.Now().UTC(),
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, err
	}

	log.Printf("[bet] placed %s: date=%s stake=%s odds=%s label=%q",
		bet.ID, bet.Date, bet.Stake.StringFixed(4), bet.Odds.StringFixed(4), bet.Label)
	return bet, nil
}

// Settle moves a pending wager to a terminal status and derives its profit
// with the profit-by-status rule. Settling an already-settled bet fails.
func (s *BetService) Settle(ctx context.Context, id uuid.UUID, status domain.BetStatus) (*domain.Bet, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("bet_service.Settle: status %q: %w", status, domain.ErrInvalidStatus)
	}

	bet, err := s.betRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profit, err := domain.ComputeProfit(bet.Stake, bet.Odds, status)
	if err != nil {
		return nil, fmt.Errorf("bet_service.Settle: %w", err)
	}

	if err := s.betRepo.Settle(ctx, id, status, profit); err != nil {
		return nil, err
	}

	log.Printf("[bet] settled %s: status=%s profit=%s", id, status, profit.StringFixed(4))

	bet.Status = status
	bet.Profit = &profit
	now := time.Now().UTC()
	bet.ResolvedAt = &now
	return bet, nil
}

// Revert puts a settled, not-yet-processed wager back to pending so a wrong
// settlement can be corrected. Once the bet is folded into a daily record the
// correction window is closed.
func (s *BetService) Revert(ctx context.Context, id uuid.UUID) error {
	if err := s.betRepo.Revert(ctx, id); err != nil {
		return err
	}
	log.Printf("[bet] reverted %s to pending", id)
	return nil
}

// Get returns one wager.
func (s *BetService) Get(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	return s.betRepo.GetByID(ctx, id)
}

// List returns paginated wagers, optionally filtered to one accounting day.
func (s *BetService) List(ctx context.Context, date string, limit, offset int) ([]*domain.Bet, error) {
	if date != "" && !domain.ValidDate(date) {
		return nil, fmt.Errorf("bet_service.List: bad date %q: %w", date, domain.ErrDateMismatch)
	}
	return s.betRepo.List(ctx, date, limit, offset)
}

// Group returns every leg sharing a group id.
func (s *BetService) Group(ctx context.Context, groupID uuid.UUID) ([]*domain.Bet, error) {
	return s.betRepo.GetByGroup(ctx, groupID)
}
