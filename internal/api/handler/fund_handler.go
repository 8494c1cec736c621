package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
)

// FundHandler serves the public fund endpoints: global stats and the daily
// history. No account data leaks here, so no auth is required.
type FundHandler struct {
	ledgerSvc *service.LedgerService
}

// NewFundHandler creates a FundHandler.
func NewFundHandler(ledgerSvc *service.LedgerService) *FundHandler {
	return &FundHandler{ledgerSvc: ledgerSvc}
}

// Stats godoc
// GET /api/fund/stats
func (h *FundHandler) Stats(c *gin.Context) {
	stats, err := h.ledgerSvc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load stats")
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// History godoc
// GET /api/fund/history?page=&limit=
func (h *FundHandler) History(c *gin.Context) {
	page, limit := parsePagination(c)
	records, err := h.ledgerSvc.History(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load history")
		return
	}
	respondList(c, records, len(records), page, limit)
}

// Record godoc
// GET /api/fund/history/:date
func (h *FundHandler) Record(c *gin.Context) {
	date := c.Param("date")
	rec, err := h.ledgerSvc.RecordForDate(c.Request.Context(), date)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "no record for that date")
			return
		}
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	if rec == nil {
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "no record for that date")
		return
	}
	respondSuccess(c, http.StatusOK, rec)
}
