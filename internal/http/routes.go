package http

import (
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/http/handlers"
	"finance_webapp/internal/http/middleware"
	"finance_webapp/internal/repository"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators built once at startup and shared by every request.
type Deps struct {
	Store        repository.TransactionStore
	StoreBackend string
	Transactions *service.TransactionService
	Resolver     middleware.UserResolver
	RateLimiter  *middleware.RateLimiter
}

// RouteConfig carries the settings routes need from config.Config.
type RouteConfig struct {
	Version       string
	Auth          config.AuthConfig
	APIRateLimit  int
	APIRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, deps Deps, cfg RouteConfig) {
	h := handlers.NewHandler(deps.Transactions)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.StoreBackend, cfg.Version)

	// Health checks (no rate limiting, no identity)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	auth := middleware.RequireUser(deps.Resolver, middleware.TokenSources{
		TrustedHeader: cfg.Auth.TrustedHeader,
		CookieNames:   cfg.Auth.CookieNames,
	})

	api := r.Group("/api")
	api.Use(auth)
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.PerUser(cfg.APIRateLimit, cfg.APIRateWindow))
	}

	api.GET("/me", h.Me)

	tx := api.Group("/transactions")
	{
		tx.GET("", h.ListTransactions)
		tx.POST("", h.CreateTransaction)
		tx.GET("/summary", h.TransactionSummary)
		tx.GET("/:sk", h.GetTransaction)
		tx.PUT("/:sk", h.UpdateTransaction)
		tx.DELETE("/:sk", h.DeleteTransaction)
	}
}

// RouteConfigFrom picks the route settings out of the application config.
func RouteConfigFrom(cfg *config.Config) RouteConfig {
	return RouteConfig{
		Version:       cfg.Version,
		Auth:          cfg.Auth,
		APIRateLimit:  cfg.APIRateLimit,
		APIRateWindow: cfg.APIRateWindow,
	}
}
