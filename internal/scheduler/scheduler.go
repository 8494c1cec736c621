// Package scheduler runs the background goroutine that closes out accounting
// days: every tick it asks the ledger for resolvable days and distributes
// their profit. It also bridges ledger events onto the WebSocket hub so
// dashboards refresh without polling.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ortakkasa/poolfund/internal/config"
	"github.com/ortakkasa/poolfund/internal/event"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/ortakkasa/poolfund/internal/ws"
)

// ──────────────────────────────────────────────────────────────────────────────
// WsHub interface — minimally required from the Hub
// ──────────────────────────────────────────────────────────────────────────────

// WsHub defines the broadcast operations the Scheduler needs from the
// WebSocket hub. Declared here so the scheduler package does not depend on
// the ws/hub.go implementation.
type WsHub interface {
	BroadcastDayResolved(msg ws.DayResolvedMessage)
	BroadcastStatsUpdate(msg ws.StatsUpdateMessage)
	BroadcastGoalReached(msg ws.GoalReachedMessage)
}

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

// Scheduler drives automatic day resolution. Call Start(ctx) once from
// main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	ledgerSvc *service.LedgerService
	bus       *event.Bus
	hub       WsHub
	cfg       *config.Config
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler and subscribes the WS bridge to the bus.
func NewScheduler(
	ledgerSvc *service.LedgerService,
	bus *event.Bus,
	hub WsHub,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	s := &Scheduler{
		ledgerSvc: ledgerSvc,
		bus:       bus,
		hub:       hub,
		cfg:       cfg,
		logger:    logger,
	}
	if hub != nil {
		bus.Subscribe(event.DayResolved, s.onDayResolved)
		bus.Subscribe(event.GoalReached, s.onGoalReached)
	}
	return s
}

// Start launches the resolution goroutine. It returns immediately; the loop
// runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.resolutionLoop(ctx)
	s.logger.Info("scheduler started", "interval", s.cfg.Fund.ResolveInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// resolutionLoop
// ──────────────────────────────────────────────────────────────────────────────

// resolutionLoop scans for resolvable days on every tick. One immediate scan
// runs at startup so a restart never delays an overdue day by a full interval.
func (s *Scheduler) resolutionLoop(ctx context.Context) {
	defer s.recoverAndLog("resolutionLoop")

	if err := s.ledgerSvc.ResolvePending(ctx); err != nil {
		s.logger.Error("resolutionLoop: initial scan", "err", err)
	}

	ticker := time.NewTicker(s.cfg.Fund.ResolveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("resolutionLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.ledgerSvc.ResolvePending(ctx); err != nil {
				s.logger.Error("resolutionLoop: ResolvePending", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Event bridge — bus → WebSocket
// ──────────────────────────────────────────────────────────────────────────────

func (s *Scheduler) onDayResolved(payload interface{}) {
	p, ok := payload.(event.DayResolvedPayload)
	if !ok {
		return
	}
	s.hub.BroadcastDayResolved(ws.DayResolvedMessage{
		Type:      ws.MsgTypeDayResolved,
		Day:       p.Day,
		Date:      p.Date,
		Net:       p.Net,
		Fees:      p.Fees,
		BankEnd:   p.BankEnd,
		Timestamp: time.Now().UTC(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := s.ledgerSvc.Stats(ctx)
	if err != nil {
		s.logger.Warn("onDayResolved: stats refresh failed", "err", err)
		return
	}
	s.hub.BroadcastStatsUpdate(ws.StatsUpdateMessage{
		Type:             ws.MsgTypeStatsUpdate,
		TotalInvested:    stats.TotalInvested,
		TotalDistributed: stats.TotalDistributed,
		ActiveInvestors:  stats.ActiveInvestors,
		CurrentFeeRate:   stats.CurrentFeeRate,
		Timestamp:        time.Now().UTC(),
	})
}

func (s *Scheduler) onGoalReached(payload interface{}) {
	p, ok := payload.(event.GoalPayload)
	if !ok {
		return
	}
	s.hub.BroadcastGoalReached(ws.GoalReachedMessage{
		Type:      ws.MsgTypeGoalReached,
		Target:    p.Target,
		Timestamp: time.Now().UTC(),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside the goroutine to catch unexpected panics,
// log them, and keep the process alive.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
