package backoffice

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/backoffice/handler"
	"github.com/ortakkasa/poolfund/internal/config"
	"github.com/ortakkasa/poolfund/internal/repository"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/ortakkasa/poolfund/internal/ws"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc      *service.AuthService
	LedgerSvc    *service.LedgerService
	BetSvc       *service.BetService
	FundingSvc   *service.FundingService
	UserRepo     *repository.UserRepository
	InvestorRepo *repository.InvestorRepository
	HistoryRepo  *repository.HistoryRepository
	FundingRepo  *repository.FundingRepository
	Hub          *ws.Hub
	Cfg          *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine on port 8081.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	dashH := handler.NewDashboardHandler(deps.LedgerSvc, deps.FundingRepo, deps.InvestorRepo, deps.Hub)
	betH := handler.NewBetAdminHandler(deps.BetSvc)
	ledgerH := handler.NewLedgerAdminHandler(deps.LedgerSvc)
	fundingH := handler.NewFundingAdminHandler(deps.FundingSvc)
	investorH := handler.NewInvestorAdminHandler(deps.UserRepo, deps.InvestorRepo, deps.HistoryRepo)

	jwtMW := adminJWTMiddleware(deps.AuthSvc)
	// Finance and admin may move money; readonly may only look.
	writeMW := requireRoles("admin", "finance")
	adminOnlyMW := requireRoles("admin")

	admin := r.Group("/admin")
	admin.Use(jwtMW)
	{
		admin.GET("/dashboard", dashH.Dashboard)

		// Bets
		b := admin.Group("/bets")
		{
			b.GET("", betH.List)
			b.GET("/:id", betH.Detail)
			b.POST("", adminOnlyMW, betH.Create)
			b.POST("/:id/settle", adminOnlyMW, betH.Settle)
			b.POST("/:id/revert", adminOnlyMW, betH.Revert)
		}

		// Ledger
		l := admin.Group("/ledger")
		{
			l.GET("/history", ledgerH.History)
			l.GET("/check/:userID", ledgerH.CheckIntegrity)
			l.POST("/resolve", adminOnlyMW, ledgerH.Resolve)
		}

		// Funding review queue
		f := admin.Group("/funding")
		{
			f.GET("", fundingH.List)
			f.POST("/:id/approve", writeMW, fundingH.Approve)
			f.POST("/:id/reject", writeMW, fundingH.Reject)
		}

		// Investors
		i := admin.Group("/investors")
		{
			i.GET("", investorH.List)
			i.GET("/:id", investorH.Detail)
			i.POST("/:id/suspend", adminOnlyMW, investorH.Suspend)
			i.POST("/:id/activate", adminOnlyMW, investorH.Activate)
			i.POST("/:id/role", adminOnlyMW, investorH.SetRole)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}

// ── Admin JWT middleware ──────────────────────────────────────────────────────

// adminJWTMiddleware validates a JWT and requires the caller to have a
// backoffice-capable role (admin, finance, readonly).
func adminJWTMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := authSvc.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Require at least one backoffice role
		backofficeRoles := map[string]bool{
			"admin":    true,
			"finance":  true,
			"readonly": true,
		}
		if !backofficeRoles[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// requireRoles gates mutating routes to specific backoffice roles.
// Must be placed after adminJWTMiddleware in the chain.
func requireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		roleStr, _ := role.(string)
		if !allowed[roleStr] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
