package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/db"
	httpServer "finance_webapp/internal/http"
	"finance_webapp/internal/http/middleware"
	"finance_webapp/internal/logger"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("configuration error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := db.OpenStore(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("failed to open transaction store", "backend", cfg.StoreBackend, "error", err)
	}
	defer store.Close()

	redisClient := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	transactions := service.NewTransactionServiceWithLimits(store, service.NewTransactionValidator(), cfg.DefaultListLimit, cfg.MaxListLimit)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Store:        store,
		StoreBackend: store.Backend,
		Transactions: transactions,
		Resolver:     service.NewIdentityResolver(),
		RateLimiter:  middleware.NewRateLimiter(redisClient),
	}, httpServer.RouteConfigFrom(cfg))

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "backend", store.Backend, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
