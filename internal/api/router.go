package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ortakkasa/poolfund/internal/api/handler"
	"github.com/ortakkasa/poolfund/internal/api/middleware"
	"github.com/ortakkasa/poolfund/internal/config"
	"github.com/ortakkasa/poolfund/internal/service"
	"github.com/ortakkasa/poolfund/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc      *service.AuthService
	LedgerSvc    *service.LedgerService
	PortfolioSvc *service.PortfolioService
	FundingSvc   *service.FundingService
	AlertSvc     *service.AlertService
	Hub          *ws.Hub
	Cfg          *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	userH := handler.NewUserHandler(deps.AuthSvc)
	fundH := handler.NewFundHandler(deps.LedgerSvc)
	portfolioH := handler.NewPortfolioHandler(deps.PortfolioSvc)
	fundingH := handler.NewFundingHandler(deps.FundingSvc)
	goalH := handler.NewGoalHandler(deps.AlertSvc)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)
	investorMW := middleware.RoleMiddleware("investor")

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10)    // 10 req/s per IP for auth endpoints
	fundingRL := middleware.RateLimitMiddleware(30) // 30 req/s per IP for funding endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", userH.Register)
			auth.POST("/login", userH.Login)
			auth.POST("/refresh", userH.Refresh)
		}

		// ── Fund (public) ────────────────────────────────────────────────────
		fund := api.Group("/fund")
		{
			fund.GET("/stats", fundH.Stats)
			fund.GET("/history", fundH.History)
			fund.GET("/history/:date", fundH.Record)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW)
		{
			authed.GET("/me", userH.Me)

			// Portfolio
			portfolio := authed.Group("/portfolio")
			{
				portfolio.GET("", portfolioH.Me)
				portfolio.GET("/ledger", portfolioH.Ledger)
				portfolio.GET("/audit", portfolioH.AuditTrail)
			}

			// Funding requests (investors only; staff roles hold no account)
			funding := authed.Group("/funding")
			funding.Use(investorMW, fundingRL)
			{
				funding.POST("/deposit", fundingH.Deposit)
				funding.POST("/withdraw", fundingH.Withdraw)
				funding.GET("", fundingH.List)
			}

			// Profit goals
			goals := authed.Group("/goals")
			goals.Use(investorMW)
			{
				goals.POST("", goalH.Create)
				goals.GET("", goalH.List)
				goals.DELETE("/:id", goalH.Delete)
			}
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			// Production: allow only the fund's own dashboards
			allowed := map[string]bool{
				"https://ortakkasa.app":     true,
				"https://www.ortakkasa.app": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
