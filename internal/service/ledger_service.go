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
)

// LedgerService runs the daily profit distribution: it collects the day's
// settled wagers, feeds them through the distribution engine, and applies the
// result to storage in one atomic transaction.
//
// All balance-mutating paths (distribution here, deposits/withdrawals in
// FundingService) share one process-wide mutex, so concurrent triggers
// serialize instead of interleaving reads and writes of investor balances.
type LedgerService struct {
	db           *sqlx.DB
	investorRepo *repository.InvestorRepository
	betRepo      *repository.BetRepository
	historyRepo  *repository.HistoryRepository
	bus          *event.Bus
	policy       *domain.FeePolicy
	cfg          *config.Config
	mu           *sync.Mutex
}

// NewLedgerService builds a LedgerService. mu is the fund-wide mutex shared
// with FundingService.
func NewLedgerService(
	db *sqlx.DB,
	investorRepo *repository.InvestorRepository,
	betRepo *repository.BetRepository,
	historyRepo *repository.HistoryRepository,
	bus *event.Bus,
	policy *domain.FeePolicy,
	cfg *config.Config,
	mu *sync.Mutex,
) *LedgerService {
	return &LedgerService{
		db:           db,
		investorRepo: investorRepo,
		betRepo:      betRepo,
		historyRepo:  historyRepo,
		bus:          bus,
		policy:       policy,
		cfg:          cfg,
		mu:           mu,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ResolveDay — resolve one accounting day end to end
// ──────────────────────────────────────────────────────────────────────────────

// ResolveDay distributes one day's profit. Either every effect commits (daily
// record, allocation credits, ledger entries, audit rows, processed flags,
// stats) or none does. Re-running a resolved day fails on the daily record's
// unique date constraint before any balance moves, so the operation is
// idempotent.
func (s *LedgerService) ResolveDay(ctx context.Context, date string) (*domain.DayResolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A day with unsettled wagers is not resolvable yet.
	pending, err := s.betRepo.HasPending(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.ResolveDay: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("ledger_service.ResolveDay %s: %w", date, domain.ErrBetPending)
	}

	investors, err := s.investorRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.ResolveDay: investors: %w", err)
	}
	bets, err := s.betRepo.GetUnprocessedSettled(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.ResolveDay: bets: %w", err)
	}
	prior, err := s.historyRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.ResolveDay: prior record: %w", err)
	}

	res, err := domain.DistributeDay(domain.DayInput{
		Date:      date,
		Investors: investors,
		Bets:      bets,
		Prior:     prior,
		Policy:    s.policy,
	})
	if err != nil {
		return nil, err
	}

	if err := s.applyResolution(ctx, res); err != nil {
		return nil, err
	}

	log.Printf("[ledger] day %d (%s) resolved: gross=%s fees=%s net=%s investors=%d bets=%d",
		res.Record.Day, date,
		res.Record.GrossProfit.StringFixed(4),
		res.Fees.StringFixed(4),
		res.Net.StringFixed(4),
		len(res.Allocations), res.Record.NumBets)

	// Post-commit fan-out; subscribers handle alerts and broadcasts.
	s.bus.Publish(event.DayResolved, event.DayResolvedPayload{
		Date:    date,
		Day:     res.Record.Day,
		Net:     res.Net,
		Fees:    res.Fees,
		BankEnd: res.Record.BankEnd,
	})
	for _, a := range res.Allocations {
		if a.Net.IsZero() {
			continue
		}
		s.bus.Publish(event.ProfitDistributed, event.ProfitPayload{
			UserID: a.UserID,
			Date:   date,
			Net:    a.Net,
		})
	}

	return res, nil
}

// applyResolution writes a computed resolution to storage atomically.
func (s *LedgerService) applyResolution(ctx context.Context, res *domain.DayResolution) error {
	tx, txErr := s.db.BeginTxx(ctx, nil)
	if txErr != nil {
		return fmt.Errorf("ledger_service.applyResolution: begin tx: %w", txErr)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	// The unique date index makes this the idempotency gate: a concurrent or
	// repeated resolution of the same day dies here, before balances move.
	if txErr = s.historyRepo.Insert(ctx, tx, res.Record); txErr != nil {
		return fmt.Errorf("ledger_service.applyResolution: record: %w", txErr)
	}

	now := time.Now().UTC()
	recordID := res.Record.ID
	for _, a := range res.Allocations {
		invested, profit, lockErr := s.investorRepo.LockForUpdate(ctx, tx, a.UserID)
		if lockErr != nil {
			txErr = fmt.Errorf("ledger_service.applyResolution: lock %s: %w", a.UserID, lockErr)
			return txErr
		}
		before := invested.Add(profit)

		if txErr = s.investorRepo.ApplyAllocation(ctx, tx, a); txErr != nil {
			return fmt.Errorf("ledger_service.applyResolution: credit %s: %w", a.UserID, txErr)
		}

		entry := &domain.LedgerEntry{
			ID:        uuid.New(),
			UserID:    a.UserID,
			Date:      res.Record.Date,
			Amount:    a.Net,
			Type:      domain.EntryProfitPayout,
			RefID:     &recordID,
			CreatedAt: now,
		}
		if txErr = s.investorRepo.AppendEntry(ctx, tx, entry); txErr != nil {
			return fmt.Errorf("ledger_service.applyResolution: ledger %s: %w", a.UserID, txErr)
		}

		if a.Net.IsZero() {
			continue // zero allocation: the ledger row alone documents the cycle
		}
		audit := &domain.AuditRecord{
			ID:            uuid.New(),
			UserID:        a.UserID,
			Action:        domain.AuditProfitCredited,
			Amount:        a.Net,
			BalanceBefore: before,
			BalanceAfter:  before.Add(a.Net),
			RefID:         &recordID,
			Note: fmt.Sprintf("Day %d: share %s, gross %s, fee %s",
				res.Record.Day, a.Share.StringFixed(6),
				a.Gross.StringFixed(4), a.Fee.StringFixed(4)),
			CreatedAt: now,
		}
		if txErr = s.investorRepo.LogAudit(ctx, tx, audit); txErr != nil {
			return fmt.Errorf("ledger_service.applyResolution: audit %s: %w", a.UserID, txErr)
		}
	}

	// Row-count mismatch means another path processed a wager meanwhile; the
	// whole day rolls back rather than double-counting.
	if txErr = s.betRepo.MarkProcessed(ctx, tx, res.BetIDs); txErr != nil {
		return fmt.Errorf("ledger_service.applyResolution: mark processed: %w", txErr)
	}

	activeCount := len(res.Allocations)
	if txErr = s.historyRepo.ApplyResolution(ctx, tx,
		res.Net, res.Turnover, res.Unallocated, res.Record.FeeRate,
		res.Record.NumBets, activeCount); txErr != nil {
		return fmt.Errorf("ledger_service.applyResolution: stats: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("ledger_service.applyResolution: commit: %w", txErr)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ResolvePending — called by the Scheduler every tick
// ──────────────────────────────────────────────────────────────────────────────

// ResolvePending resolves every past day whose wagers are all settled and
// unprocessed. A single failing day does NOT abort the others. The cutoff
// trails the clock by the configured lag so admins can still correct a day
// shortly after midnight.
func (s *LedgerService) ResolvePending(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.cfg.Fund.ResolveLag).Format(domain.DateLayout)
	dates, err := s.betRepo.ResolvableDates(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ledger_service.ResolvePending: fetch: %w", err)
	}

	for _, date := range dates {
		if _, err := s.ResolveDay(ctx, date); err != nil {
			log.Printf("[ledger] ERROR resolving day %s: %v", date, err)
			// Continue: do not block other days because one failed.
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Read side
// ──────────────────────────────────────────────────────────────────────────────

// History returns paginated daily records, newest first.
func (s *LedgerService) History(ctx context.Context, limit, offset int) ([]*domain.DailyRecord, error) {
	return s.historyRepo.List(ctx, limit, offset)
}

// RecordForDate returns the daily record for one date.
func (s *LedgerService) RecordForDate(ctx context.Context, date string) (*domain.DailyRecord, error) {
	if !domain.ValidDate(date) {
		return nil, fmt.Errorf("ledger_service.RecordForDate: bad date %q: %w", date, domain.ErrDateMismatch)
	}
	return s.historyRepo.GetByDate(ctx, date)
}

// Stats returns the current global stats row.
func (s *LedgerService) Stats(ctx context.Context) (*domain.GlobalStats, error) {
	return s.historyRepo.GetStats(ctx)
}

// CheckInvestorLedger reconciles one investor's balance against the signed sum
// of its ledger entries. Used by the backoffice integrity endpoint.
func (s *LedgerService) CheckInvestorLedger(ctx context.Context, userID uuid.UUID) (bool, error) {
	inv, err := s.investorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	entries, err := s.investorRepo.GetAllEntries(ctx, userID)
	if err != nil {
		return false, err
	}
	tol := decimalFromFloat(s.cfg.Fund.LedgerTolerance)
	return inv.CheckLedger(entries, tol), nil
}
