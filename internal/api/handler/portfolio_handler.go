package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/api/middleware"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
)

// PortfolioHandler serves the authenticated investor's own account views.
type PortfolioHandler struct {
	portfolioSvc *service.PortfolioService
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolioSvc *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: portfolioSvc}
}

// Me godoc
// GET /api/portfolio [JWT required]
func (h *PortfolioHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	view, err := h.portfolioSvc.Get(c.Request.Context(), userID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load portfolio")
		return
	}
	respondSuccess(c, http.StatusOK, view)
}

// Ledger godoc
// GET /api/portfolio/ledger?page=&limit= [JWT required]
func (h *PortfolioHandler) Ledger(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	entries, err := h.portfolioSvc.Ledger(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load ledger")
		return
	}
	respondList(c, entries, len(entries), page, limit)
}

// AuditTrail godoc
// GET /api/portfolio/audit?page=&limit= [JWT required]
func (h *PortfolioHandler) AuditTrail(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	records, err := h.portfolioSvc.AuditTrail(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load audit trail")
		return
	}
	respondList(c, records, len(records), page, limit)
}
