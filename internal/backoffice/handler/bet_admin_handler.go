package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/shopspring/decimal"
)

// BetAdminHandler manages the fund's wagers from the backoffice.
type BetAdminHandler struct {
	betSvc *service.BetService
}

// NewBetAdminHandler creates a BetAdminHandler.
func NewBetAdminHandler(betSvc *service.BetService) *BetAdminHandler {
	return &BetAdminHandler{betSvc: betSvc}
}

// List godoc
// GET /admin/bets?date=&page=&limit=
func (h *BetAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	date := c.Query("date")

	bets, err := h.betSvc.List(c.Request.Context(), date, limit, (page-1)*limit)
	if err != nil {
		if errors.Is(err, domain.ErrDateMismatch) {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load bets")
		return
	}
	respondList(c, bets, len(bets), page, limit)
}

// Create godoc
// POST /admin/bets
func (h *BetAdminHandler) Create(c *gin.Context) {
	var body struct {
		GroupID string          `json:"group_id"`
		Date    string          `json:"date"  binding:"required"`
		Label   string          `json:"label" binding:"required"`
		Stake   decimal.Decimal `json:"stake" binding:"required"`
		Odds    decimal.Decimal `json:"odds"  binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	req := domain.PlaceBetRequest{
		Date:  body.Date,
		Label: body.Label,
		Stake: body.Stake,
		Odds:  body.Odds,
	}
	if body.GroupID != "" {
		gid, err := uuid.Parse(body.GroupID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid group_id")
			return
		}
		req.GroupID = gid
	}

	bet, err := h.betSvc.Place(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	respondSuccess(c, http.StatusCreated, bet)
}

// Detail godoc
// GET /admin/bets/:id
func (h *BetAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid bet id")
		return
	}

	bet, err := h.betSvc.Get(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load bet")
		return
	}

	group, err := h.betSvc.Group(c.Request.Context(), bet.GroupID)
	if err != nil {
		group = nil
	}
	respondSuccess(c, http.StatusOK, gin.H{"bet": bet, "group": group})
}

// Settle godoc
// POST /admin/bets/:id/settle
func (h *BetAdminHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid bet id")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	bet, err := h.betSvc.Settle(c.Request.Context(), id, domain.BetStatus(body.Status))
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		case errors.Is(err, domain.ErrBetAlreadySettled):
			respondError(c, http.StatusConflict, "ERR_ALREADY_SETTLED", err.Error())
		case errors.Is(err, domain.ErrInvalidStatus):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_STATUS", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "settlement failed")
		}
		return
	}
	respondSuccess(c, http.StatusOK, bet)
}

// Revert godoc
// POST /admin/bets/:id/revert
func (h *BetAdminHandler) Revert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid bet id")
		return
	}

	if err := h.betSvc.Revert(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrBetProcessed):
			respondError(c, http.StatusConflict, "ERR_ALREADY_PROCESSED", err.Error())
		case errors.Is(err, domain.ErrBetPending):
			respondError(c, http.StatusConflict, "ERR_NOT_SETTLED", err.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "revert failed")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"reverted": true})
}
