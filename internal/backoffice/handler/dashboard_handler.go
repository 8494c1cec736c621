package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/ortakkasa/poolfund/internal/ws"
	"github.com/shopspring/decimal"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	ledgerSvc    *service.LedgerService
	fundingRepo  *repository.FundingRepository
	investorRepo *repository.InvestorRepository
	hub          *ws.Hub
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	ledgerSvc *service.LedgerService,
	fundingRepo *repository.FundingRepository,
	investorRepo *repository.InvestorRepository,
	hub *ws.Hub,
) *DashboardHandler {
	return &DashboardHandler{
		ledgerSvc:    ledgerSvc,
		fundingRepo:  fundingRepo,
		investorRepo: investorRepo,
		hub:          hub,
	}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	// ── Global stats ─────────────────────────────────────────────────────────
	var statsData gin.H
	stats, err := h.ledgerSvc.Stats(ctx)
	if err == nil {
		// Live sum straight from the accounts; drift against the stats row
		// means a funding review bypassed SetTotalInvested.
		livePrincipal, _ := h.investorRepo.TotalInvested(ctx)
		statsData = gin.H{
			"live_principal":    livePrincipal,
			"total_invested":    stats.TotalInvested,
			"total_distributed": stats.TotalDistributed,
			"active_investors":  stats.ActiveInvestors,
			"current_fee_rate":  stats.CurrentFeeRate,
			"current_turnover":  stats.CurrentTurnover,
			"total_bets_placed": stats.TotalBetsPlaced,
			"unallocated":       stats.Unallocated,
		}
	}

	// ── Latest resolved day ──────────────────────────────────────────────────
	var latestData gin.H
	latest, err := h.ledgerSvc.History(ctx, 1, 0)
	if err == nil && len(latest) > 0 {
		rec := latest[0]
		latestData = gin.H{
			"day":          rec.Day,
			"date":         rec.Date,
			"gross_profit": rec.GrossProfit,
			"net":          rec.Net,
			"fees":         rec.Fees,
			"bank_end":     rec.BankEnd,
		}
	}

	// ── Pending funding requests ─────────────────────────────────────────────
	pending, _ := h.fundingRepo.ListByStatus(ctx, "pending", 1000, 0)
	var pendingTotal decimal.Decimal
	for _, p := range pending {
		pendingTotal = pendingTotal.Add(p.Amount)
	}

	// ── WS connections ────────────────────────────────────────────────────────
	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":  time.Now().UTC(),
		"stats":      statsData,
		"latest_day": latestData,
		"pending_requests": gin.H{
			"count": len(pending),
			"total": pendingTotal,
		},
		"ws_connections": wsConnections,
	})
}
