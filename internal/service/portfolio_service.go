package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/shopspring/decimal"
)

// PortfolioView is the investor-facing account snapshot.
type PortfolioView struct {
	Account *domain.Investor `json:"account"`
	Balance decimal.Decimal  `json:"balance"`
	// ShareOfFund is the investor's current fraction of the pooled balance,
	// zero when the investor does not participate.
	ShareOfFund decimal.Decimal `json:"share_of_fund"`
}

// PortfolioService serves investor-facing reads: balances, ledger history,
// and the audit trail.
type PortfolioService struct {
	investorRepo *repository.InvestorRepository
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(investorRepo *repository.InvestorRepository) *PortfolioService {
	return &PortfolioService{investorRepo: investorRepo}
}

// Get returns the snapshot for one investor, including the live fund share.
func (s *PortfolioService) Get(ctx context.Context, userID uuid.UUID) (*PortfolioView, error) {
	inv, err := s.investorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Account: inv,
		Balance: inv.Balance(),
	}

	if inv.Participates() {
		all, err := s.investorRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		base := decimal.Zero
		for _, other := range all {
			if other.Participates() {
				base = base.Add(other.Balance())
			}
		}
		if base.IsPositive() {
			view.ShareOfFund = inv.Balance().Div(base)
		}
	}
	return view, nil
}

// Ledger returns the investor's paginated fund history, newest first.
func (s *PortfolioService) Ledger(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEntry, error) {
	return s.investorRepo.GetEntries(ctx, userID, limit, offset)
}

// AuditTrail returns the investor's balance-affecting audit rows.
func (s *PortfolioService) AuditTrail(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.AuditRecord, error) {
	return s.investorRepo.GetAuditTrail(ctx, userID, limit, offset)
}
