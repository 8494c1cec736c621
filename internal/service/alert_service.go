package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/event"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/shopspring/decimal"
)

// AlertService watches profit distributions and flips investor goals that the
// cumulative profit has crossed. It subscribes to the event bus rather than
// being called from the resolution transaction, so a slow or failing goal
// check can never hold up the ledger.
type AlertService struct {
	goalRepo     *repository.GoalRepository
	investorRepo *repository.InvestorRepository
	bus          *event.Bus
}

// NewAlertService builds an AlertService and wires it to the bus.
func NewAlertService(
	goalRepo *repository.GoalRepository,
	investorRepo *repository.InvestorRepository,
	bus *event.Bus,
) *AlertService {
	s := &AlertService{
		goalRepo:     goalRepo,
		investorRepo: investorRepo,
		bus:          bus,
	}
	bus.Subscribe(event.ProfitDistributed, s.onProfitDistributed)
	return s
}

func (s *AlertService) onProfitDistributed(payload interface{}) {
	p, ok := payload.(event.ProfitPayload)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Evaluate(ctx, p.UserID); err != nil {
		log.Printf("[alert] ERROR evaluating goals for %s: %v", p.UserID, err)
	}
}

// Evaluate checks every open goal of one investor against the current
// cumulative profit and latches the reached ones. The reached flag flips at
// most once per goal even when distributions race.
func (s *AlertService) Evaluate(ctx context.Context, userID uuid.UUID) error {
	inv, err := s.investorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("alert_service.Evaluate: %w", err)
	}

	goals, err := s.goalRepo.ListOpenByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("alert_service.Evaluate: %w", err)
	}

	for _, g := range goals {
		if inv.TotalProfit.LessThan(g.Target) {
			continue
		}
		if err := s.goalRepo.MarkReached(ctx, g.ID); err != nil {
			if domain.IsNotFound(err) {
				continue // another evaluation latched it first
			}
			return fmt.Errorf("alert_service.Evaluate: mark %s: %w", g.ID, err)
		}
		log.Printf("[alert] goal reached: user=%s target=%s profit=%s",
			userID, g.Target.StringFixed(4), inv.TotalProfit.StringFixed(4))
		s.bus.Publish(event.GoalReached, event.GoalPayload{
			GoalID: g.ID,
			UserID: userID,
			Target: g.Target,
		})
	}
	return nil
}

// CreateGoal records a new profit target for an investor. A target the
// investor has already passed is latched immediately.
func (s *AlertService) CreateGoal(ctx context.Context, userID uuid.UUID, target decimal.Decimal) (*domain.ProfitGoal, error) {
	if !target.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.investorRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	g := &domain.ProfitGoal{
		ID:        uuid.New(),
		UserID:    userID,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.goalRepo.Create(ctx, g); err != nil {
		return nil, err
	}

	if err := s.Evaluate(ctx, userID); err != nil {
		log.Printf("[alert] WARN: initial evaluation for goal %s: %v", g.ID, err)
	}
	return g, nil
}

// ListGoals returns all goals of one investor.
func (s *AlertService) ListGoals(ctx context.Context, userID uuid.UUID) ([]*domain.ProfitGoal, error) {
	return s.goalRepo.ListByUser(ctx, userID)
}

// DeleteGoal removes one of the investor's own goals.
func (s *AlertService) DeleteGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	return s.goalRepo.Delete(ctx, goalID, userID)
}
