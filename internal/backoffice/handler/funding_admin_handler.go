package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
)

// FundingAdminHandler is the finance review queue: list, approve, reject.
type FundingAdminHandler struct {
	fundingSvc *service.FundingService
}

// NewFundingAdminHandler creates a FundingAdminHandler.
func NewFundingAdminHandler(fundingSvc *service.FundingService) *FundingAdminHandler {
	return &FundingAdminHandler{fundingSvc: fundingSvc}
}

// List godoc
// GET /admin/funding?status=&page=&limit=
func (h *FundingAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	status := c.DefaultQuery("status", "pending")
	if status == "all" {
		status = ""
	}

	reqs, err := h.fundingSvc.ListByStatus(c.Request.Context(), status, limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load requests")
		return
	}
	respondList(c, reqs, len(reqs), page, limit)
}

// Approve godoc
// POST /admin/funding/:id/approve
func (h *FundingAdminHandler) Approve(c *gin.Context) {
	id, reviewer, note, ok := h.reviewParams(c)
	if !ok {
		return
	}

	req, err := h.fundingSvc.Approve(c.Request.Context(), id, reviewer, note)
	if err != nil {
		h.reviewError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, req)
}

// Reject godoc
// POST /admin/funding/:id/reject
func (h *FundingAdminHandler) Reject(c *gin.Context) {
	id, reviewer, note, ok := h.reviewParams(c)
	if !ok {
		return
	}

	if err := h.fundingSvc.Reject(c.Request.Context(), id, reviewer, note); err != nil {
		h.reviewError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"rejected": true})
}

// reviewParams extracts the request id, reviewer id, and optional note shared
// by both review endpoints. Writes the error response itself when ok=false.
func (h *FundingAdminHandler) reviewParams(c *gin.Context) (id, reviewer uuid.UUID, note string, ok bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid request id")
		return uuid.Nil, uuid.Nil, "", false
	}

	reviewerStr, _ := c.Get("userID")
	s, _ := reviewerStr.(string)
	reviewer, err = uuid.Parse(s)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "reviewer identity missing")
		return uuid.Nil, uuid.Nil, "", false
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body) // note is optional; ignore bind errors on empty bodies
	return id, reviewer, body.Note, true
}

func (h *FundingAdminHandler) reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRequestNotPending):
		respondError(c, http.StatusConflict, "ERR_NOT_PENDING", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "review failed")
	}
}
