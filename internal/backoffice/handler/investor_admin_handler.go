package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ortakkasa/poolfund/internal/domain"
	"github.com/ortakkasa/poolfund/internal/repository"
)

// InvestorAdminHandler manages investor accounts from the backoffice.
type InvestorAdminHandler struct {
	userRepo     *repository.UserRepository
	investorRepo *repository.InvestorRepository
	historyRepo  *repository.HistoryRepository
}

// NewInvestorAdminHandler creates an InvestorAdminHandler.
func NewInvestorAdminHandler(
	userRepo *repository.UserRepository,
	investorRepo *repository.InvestorRepository,
	historyRepo *repository.HistoryRepository,
) *InvestorAdminHandler {
	return &InvestorAdminHandler{
		userRepo:     userRepo,
		investorRepo: investorRepo,
		historyRepo:  historyRepo,
	}
}

// List godoc
// GET /admin/investors?page=&limit=
func (h *InvestorAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	users, err := h.userRepo.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load users")
		return
	}

	profiles := make([]*domain.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToPublicProfile())
	}
	respondList(c, profiles, len(profiles), page, limit)
}

// Detail godoc
// GET /admin/investors/:id
func (h *InvestorAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid user id")
		return
	}
	ctx := c.Request.Context()

	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
		return
	}

	// Staff accounts have no investor row; data stays nil then.
	var account *domain.Investor
	if inv, invErr := h.investorRepo.GetByUserID(ctx, id); invErr == nil {
		account = inv
	}

	entries, _ := h.investorRepo.GetEntries(ctx, id, 50, 0)
	audit, _ := h.investorRepo.GetAuditTrail(ctx, id, 50, 0)

	respondSuccess(c, http.StatusOK, gin.H{
		"user":    user.ToPublicProfile(),
		"account": account,
		"ledger":  entries,
		"audit":   audit,
	})
}

// Suspend godoc
// POST /admin/investors/:id/suspend
// A suspended investor keeps their balance but is excluded from distribution.
func (h *InvestorAdminHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Activate godoc
// POST /admin/investors/:id/activate
func (h *InvestorAdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *InvestorAdminHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid user id")
		return
	}
	ctx := c.Request.Context()

	if err := h.userRepo.SetActive(ctx, id, active); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "update failed")
		return
	}

	// Participation changed: refresh the fee-tier driver on the stats row.
	if count, cntErr := h.historyRepo.CountActiveInvestors(ctx); cntErr == nil {
		_ = h.historyRepo.SetActiveInvestors(ctx, count)
	}

	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "is_active": active})
}

// SetRole godoc
// POST /admin/investors/:id/role
func (h *InvestorAdminHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "invalid user id")
		return
	}

	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	role := domain.UserRole(body.Role)
	switch role {
	case domain.RoleInvestor, domain.RoleAdmin, domain.RoleFinance, domain.RoleReadOnly:
	default:
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "unknown role")
		return
	}
	ctx := c.Request.Context()

	if err := h.userRepo.SetRole(ctx, id, role); err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "update failed")
		return
	}

	// Role changes move accounts in or out of the active-investor count.
	if count, cntErr := h.historyRepo.CountActiveInvestors(ctx); cntErr == nil {
		_ = h.historyRepo.SetActiveInvestors(ctx, count)
	}

	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "role": role})
}
