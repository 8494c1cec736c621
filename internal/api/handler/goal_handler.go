package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/api/middleware"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/shopspring/decimal"
)

// GoalHandler manages the investor's profit goals.
type GoalHandler struct {
	alertSvc *service.AlertService
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(alertSvc *service.AlertService) *GoalHandler {
	return &GoalHandler{alertSvc: alertSvc}
}

// Create godoc
// POST /api/goals [JWT required]
func (h *GoalHandler) Create(c *gin.Context) {
	var body struct {
		Target decimal.Decimal `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	goal, err := h.alertSvc.CreateGoal(c.Request.Context(), userID, body.Target)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_ACCOUNT_NOT_FOUND", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create goal")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, goal)
}

// List godoc
// GET /api/goals [JWT required]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	goals, err := h.alertSvc.ListGoals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load goals")
		return
	}
	respondSuccess(c, http.StatusOK, goals)
}

// Delete godoc
// DELETE /api/goals/:id [JWT required]
func (h *GoalHandler) Delete(c *gin.Context) {
	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid goal id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.alertSvc.DeleteGoal(c.Request.Context(), goalID, userID); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not delete goal")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
