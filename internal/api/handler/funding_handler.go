package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/api/middleware"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/shopspring/decimal"
)

// FundingHandler lets investors submit deposit and withdrawal requests and
// follow their review status. Approval itself lives in the backoffice.
type FundingHandler struct {
	fundingSvc *service.FundingService
}

// NewFundingHandler creates a FundingHandler.
func NewFundingHandler(fundingSvc *service.FundingService) *FundingHandler {
	return &FundingHandler{fundingSvc: fundingSvc}
}

type fundingBody struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// Deposit godoc
// POST /api/funding/deposit [JWT required]
func (h *FundingHandler) Deposit(c *gin.Context) {
	var body fundingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	req, err := h.fundingSvc.SubmitDeposit(c.Request.Context(), userID, body.Amount, body.Note)
	if err != nil {
		h.submitError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, req)
}

// Withdraw godoc
// POST /api/funding/withdraw [JWT required]
func (h *FundingHandler) Withdraw(c *gin.Context) {
	var body fundingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	req, err := h.fundingSvc.SubmitWithdrawal(c.Request.Context(), userID, body.Amount, body.Note)
	if err != nil {
		h.submitError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, req)
}

// List godoc
// GET /api/funding?page=&limit= [JWT required]
func (h *FundingHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	reqs, err := h.fundingSvc.ListForUser(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load requests")
		return
	}
	respondList(c, reqs, len(reqs), page, limit)
}

func (h *FundingHandler) submitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "request failed")
	}
}
