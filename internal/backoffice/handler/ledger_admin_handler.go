package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
)

// LedgerAdminHandler exposes manual day resolution and ledger integrity
// checks to the backoffice.
type LedgerAdminHandler struct {
	ledgerSvc *service.LedgerService
}

// NewLedgerAdminHandler creates a LedgerAdminHandler.
func NewLedgerAdminHandler(ledgerSvc *service.LedgerService) *LedgerAdminHandler {
	return &LedgerAdminHandler{ledgerSvc: ledgerSvc}
}

// Resolve godoc
// POST /admin/ledger/resolve
// Manually triggers distribution for one accounting day, same path the
// scheduler takes. Useful when an admin wants to close a day before the
// automatic lag elapses.
func (h *LedgerAdminHandler) Resolve(c *gin.Context) {
	var body struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	res, err := h.ledgerSvc.ResolveDay(c.Request.Context(), body.Date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBetPending):
			respondError(c, http.StatusConflict, "ERR_PENDING_BETS", err.Error())
		case errors.Is(err, domain.ErrNothingToResolve):
			respondError(c, http.StatusConflict, "ERR_NOTHING_TO_RESOLVE", err.Error())
		case domain.IsConflict(err):
			respondError(c, http.StatusConflict, "ERR_DAY_RESOLVED", err.Error())
		case domain.IsPrecondition(err):
			respondError(c, http.StatusUnprocessableEntity, "ERR_PRECONDITION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "resolution failed")
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"record":      res.Record,
		"allocations": res.Allocations,
		"net":         res.Net,
		"fees":        res.Fees,
		"unallocated": res.Unallocated,
	})
}

// History godoc
// GET /admin/ledger/history?page=&limit=
func (h *LedgerAdminHandler) History(c *gin.Context) {
	page, limit := adminPagination(c)
	records, err := h.ledgerSvc.History(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load history")
		return
	}
	respondList(c, records, len(records), page, limit)
}

// CheckIntegrity godoc
// GET /admin/ledger/check/:userID
// Reconciles one investor's balance against the signed sum of their ledger.
func (h *LedgerAdminHandler) CheckIntegrity(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid user id")
		return
	}

	ok, err := h.ledgerSvc.CheckInvestorLedger(c.Request.Context(), userID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "check failed")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": userID, "consistent": ok})
}
