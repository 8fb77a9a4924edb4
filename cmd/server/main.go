// Package main is the entry point for the Tidewater API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tidewater/internal/bootstrap"
	"tidewater/internal/config"
	"tidewater/internal/domain/auth"
	v1 "tidewater/internal/infrastructure/http/v1"
	"tidewater/internal/infrastructure/http/v1/handlers"
	"tidewater/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger("tidewater-server"))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	rt, err := bootstrap.Open(ctx, cfg, "tidewater-server")
	if err != nil {
		log.Fatalw("startup failed", "error", err)
	}
	defer rt.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := v1.RouterConfig{
		Services:     rt.Services,
		Logger:       log,
		Idempotency:  rt.Idempotency,
		HealthChecks: map[string]handlers.Pinger{},
	}
	if rt.Pool != nil {
		routerCfg.HealthChecks["database"] = rt.Pool.Ping
	}
	if rt.Redis != nil {
		routerCfg.HealthChecks["redis"] = func(ctx context.Context) error { return rt.Redis.Ping(ctx).Err() }
	}
	if cfg.JWTSecret != "" {
		routerCfg.TokenValidator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET not set; /api/v1 is unauthenticated")
	}

	router, err := v1.NewRouter(routerCfg)
	if err != nil {
		log.Fatalw("router setup failed", "error", err)
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage, "timezone", cfg.BusinessTimezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}
