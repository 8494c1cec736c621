// Package main is the entry point for the ortakkasa back-office admin server.
// Runs on port 8081 and exposes staff-only endpoints protected by RBAC and an
// optional IP whitelist.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ortakkasa/poolfund/internal/backoffice"
	"github.com/ortakkasa/poolfund/internal/config"
	"github.com/ortakkasa/poolfund/internal/event"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/ortakkasa/poolfund/internal/service"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting ortakkasa backoffice server",
		"env", cfg.Server.Env, "port", cfg.Server.BackofficePort)

	// ── Database ──────────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── Repositories ──────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	investorRepo := repository.NewInvestorRepository(db)
	betRepo := repository.NewBetRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	fundingRepo := repository.NewFundingRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	// ── Services ──────────────────────────────────────────────────────────────
	// The backoffice runs its own bus and mutex; the Postgres row locks and the
	// unique daily-record index keep the two processes consistent.
	bus := event.NewBus()
	var fundMu sync.Mutex

	policy, err := cfg.FeePolicy()
	if err != nil {
		logger.Error("fee policy parse failed", "err", err)
		os.Exit(1)
	}

	authSvc := service.NewAuthService(db, userRepo, investorRepo, cfg)
	ledgerSvc := service.NewLedgerService(db, investorRepo, betRepo, historyRepo, bus, policy, cfg, &fundMu)
	betSvc := service.NewBetService(betRepo)
	fundingSvc := service.NewFundingService(db, fundingRepo, investorRepo, historyRepo, bus, cfg, &fundMu)
	_ = service.NewAlertService(goalRepo, investorRepo, bus) // evaluates goals after admin-triggered distributions

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Router ────────────────────────────────────────────────────────────────
	router := backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc:      authSvc,
		LedgerSvc:    ledgerSvc,
		BetSvc:       betSvc,
		FundingSvc:   fundingSvc,
		UserRepo:     userRepo,
		InvestorRepo: investorRepo,
		HistoryRepo:  historyRepo,
		FundingRepo:  fundingRepo,
		Hub:          nil, // backoffice does not directly serve WS
		Cfg:          cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.BackofficePort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── Start ─────────────────────────────────────────────────────────────────
	go func() {
		logger.Info("backoffice http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("backoffice server error", "err", err)
			stop()
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("backoffice shutdown error", "err", err)
	}

	db.Close()
	logger.Info("backoffice server stopped cleanly")
}
