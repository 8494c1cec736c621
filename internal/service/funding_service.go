package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ortakkasa/poolfund/internal/config"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/event"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/shopspring/decimal"
)

// FundingService handles deposit and withdrawal requests: investors submit,
// finance/admin reviews, approval moves principal. It shares the fund-wide
// mutex with LedgerService so funding never interleaves with a distribution.
type FundingService struct {
	db           *sqlx.DB
	fundingRepo  *repository.FundingRepository
	investorRepo *repository.InvestorRepository
	historyRepo  *repository.HistoryRepository
	bus          *event.Bus
	cfg          *config.Config
	mu           *sync.Mutex
}

// NewFundingService builds a FundingService. mu is the fund-wide mutex shared
// with LedgerService.
func NewFundingService(
	db *sqlx.DB,
	fundingRepo *repository.FundingRepository,
	investorRepo *repository.InvestorRepository,
	historyRepo *repository.HistoryRepository,
	bus *event.Bus,
	cfg *config.Config,
	mu *sync.Mutex,
) *FundingService {
	return &FundingService{
		db:           db,
		fundingRepo:  fundingRepo,
		investorRepo: investorRepo,
		historyRepo:  historyRepo,
		bus:          bus,
		cfg:          cfg,
		mu:           mu,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Submission (investor side)
// ──────────────────────────────────────────────────────────────────────────────

// SubmitDeposit records a pending deposit request. Nothing moves until review.
func (s *FundingService) SubmitDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, note string) (*domain.FundingRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if amount.LessThan(decimalFromFloat(s.cfg.Fund.MinDeposit)) {
		return nil, fmt.Errorf("funding_service.SubmitDeposit: below minimum %.2f: %w",
			s.cfg.Fund.MinDeposit, domain.ErrInvalidAmount)
	}
	return s.submit(ctx, userID, domain.RequestDeposit, amount, note)
}

// SubmitWithdrawal records a pending withdrawal request. The requested amount
// may exceed the current principal; the clamp happens at approval time against
// the balance of that moment.
func (s *FundingService) SubmitWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, note string) (*domain.FundingRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	return s.submit(ctx, userID, domain.RequestWithdraw, amount, note)
}

func (s *FundingService) submit(ctx context.Context, userID uuid.UUID, kind domain.RequestKind, amount decimal.Decimal, note string) (*domain.FundingRequest, error) {
	// The account must exist; staff roles have none.
	if _, err := s.investorRepo.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	req := &domain.FundingRequest{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Status:      domain.RequestPending,
		Note:        note,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.fundingRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	log.Printf("[funding] %s request %s: user=%s amount=%s", kind, req.ID, userID, amount.StringFixed(4))
	return req, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Review (finance/admin side)
// ──────────────────────────────────────────────────────────────────────────────

// Approve applies a pending request. Deposits add the full amount to the
// principal. Withdrawals subtract but clamp at zero: approving a 5000
// withdrawal against a 3000 principal books 3000 and leaves zero. The
// actually-booked amount lands on the request's Applied field; Amount keeps
// what was asked for.
func (s *FundingService) Approve(ctx context.Context, requestID, reviewerID uuid.UUID, note string) (*domain.FundingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied decimal.Decimal

	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	// Row lock plus status guard: a request can be reviewed exactly once.
	req, lockErr := s.fundingRepo.LockPending(ctx, tx, requestID)
	if lockErr != nil {
		txErr = lockErr
		return nil, txErr
	}

	invested, profit, lockErr := s.investorRepo.LockForUpdate(ctx, tx, req.UserID)
	if lockErr != nil {
		txErr = fmt.Errorf("funding_service.Approve: lock investor: %w", lockErr)
		return nil, txErr
	}
	before := invested.Add(profit)

	var newInvested decimal.Decimal
	var entryType domain.EntryType
	var entryAmount decimal.Decimal
	var action string

	switch req.Kind {
	case domain.RequestDeposit:
		applied = req.Amount
		newInvested = invested.Add(applied)
		entryType = domain.EntryDeposit
		entryAmount = applied
		action = domain.AuditDepositApproved
	case domain.RequestWithdraw:
		// Clamp: never drive the principal negative.
		applied = req.Amount
		if applied.GreaterThan(invested) {
			applied = invested
		}
		newInvested = invested.Sub(applied)
		entryType = domain.EntryWithdrawal
		entryAmount = applied.Neg()
		action = domain.AuditWithdrawApproved
	default:
		txErr = fmt.Errorf("funding_service.Approve: unknown kind %q", req.Kind)
		return nil, txErr
	}

	if txErr = s.investorRepo.SetInvested(ctx, tx, req.UserID, newInvested); txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: set invested: %w", txErr)
	}

	now := time.Now().UTC()
	reqID := req.ID
	entry := &domain.LedgerEntry{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Date:      now.Format(domain.DateLayout),
		Amount:    entryAmount,
		Type:      entryType,
		RefID:     &reqID,
		CreatedAt: now,
	}
	if txErr = s.investorRepo.AppendEntry(ctx, tx, entry); txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: ledger: %w", txErr)
	}

	audit := &domain.AuditRecord{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Action:        action,
		Amount:        entryAmount,
		BalanceBefore: before,
		BalanceAfter:  before.Add(entryAmount),
		RefID:         &reqID,
		Note: fmt.Sprintf("%s: requested %s, applied %s",
			req.Kind, req.Amount.StringFixed(4), applied.StringFixed(4)),
		CreatedAt: now,
	}
	if txErr = s.investorRepo.LogAudit(ctx, tx, audit); txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: audit: %w", txErr)
	}

	if txErr = s.fundingRepo.MarkReviewed(ctx, tx, req.ID, domain.RequestApproved, &applied, reviewerID, note); txErr != nil {
		return nil, txErr
	}

	// Keep the principal aggregate in step within the same transaction.
	var total decimal.Decimal
	if txErr = tx.GetContext(ctx, &total, `SELECT COALESCE(SUM(invested), 0) FROM investors`); txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: sum invested: %w", txErr)
	}
	if txErr = s.historyRepo.SetTotalInvested(ctx, tx, total); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("funding_service.Approve: commit: %w", txErr)
	}

	log.Printf("[funding] request %s approved: user=%s kind=%s requested=%s applied=%s",
		req.ID, req.UserID, req.Kind, req.Amount.StringFixed(4), applied.StringFixed(4))

	s.bus.Publish(event.FundingReviewed, event.FundingPayload{
		RequestID: req.ID,
		UserID:    req.UserID,
		Kind:      string(req.Kind),
		Status:    string(domain.RequestApproved),
		Applied:   applied,
	})

	out := *req
	out.Status = domain.RequestApproved
	out.Applied = &applied
	out.ReviewedBy = &reviewerID
	out.ReviewNote = note
	out.ReviewedAt = &now
	return &out, nil
}

// Reject closes a pending request without moving any money.
func (s *FundingService) Reject(ctx context.Context, requestID, reviewerID uuid.UUID, note string) error {
	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("funding_service.Reject: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	req, lockErr := s.fundingRepo.LockPending(ctx, tx, requestID)
	if lockErr != nil {
		txErr = lockErr
		return txErr
	}

	if txErr = s.fundingRepo.MarkReviewed(ctx, tx, req.ID, domain.RequestRejected, nil, reviewerID, note); txErr != nil {
		return txErr
	}

	reqID := req.ID
	audit := &domain.AuditRecord{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Action:    domain.AuditRequestRejected,
		Amount:    decimal.Zero,
		RefID:     &reqID,
		Note:      fmt.Sprintf("%s for %s rejected: %s", req.Kind, req.Amount.StringFixed(4), note),
		CreatedAt: time.Now().UTC(),
	}
	if txErr = s.investorRepo.LogAudit(ctx, tx, audit); txErr != nil {
		return fmt.Errorf("funding_service.Reject: audit: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("funding_service.Reject: commit: %w", txErr)
	}

	log.Printf("[funding] request %s rejected: user=%s kind=%s", req.ID, req.UserID, req.Kind)

	s.bus.Publish(event.FundingReviewed, event.FundingPayload{
		RequestID: req.ID,
		UserID:    req.UserID,
		Kind:      string(req.Kind),
		Status:    string(domain.RequestRejected),
	})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Read side
// ──────────────────────────────────────────────────────────────────────────────

// ListForUser returns the investor's own requests, newest first.
func (s *FundingService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.FundingRequest, error) {
	return s.fundingRepo.ListByUser(ctx, userID, limit, offset)
}

// ListByStatus returns requests for the review queue, status="" meaning all.
func (s *FundingService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*domain.FundingRequest, error) {
	return s.fundingRepo.ListByStatus(ctx, status, limit, offset)
}

// Get returns one request by id.
func (s *FundingService) Get(ctx context.Context, id uuid.UUID) (*domain.FundingRequest, error) {
	return s.fundingRepo.GetByID(ctx, id)
}
