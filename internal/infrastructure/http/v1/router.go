// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tidewater/internal/app"
	"tidewater/internal/core/idempotency"
	"tidewater/internal/infrastructure/http/v1/dto"
	"tidewater/internal/infrastructure/http/v1/handlers"
	"tidewater/internal/infrastructure/http/v1/middleware"
	"tidewater/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services
	Logger   *logger.Logger

	// TokenValidator enables bearer authentication on /api/v1 when non-nil.
	TokenValidator middleware.TokenValidator

	// Idempotency enables Idempotency-Key handling when non-nil.
	Idempotency idempotency.Store

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger
}

var registerValidators = sync.OnceValue(func() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return dto.RegisterValidators(v)
})

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Order matters: Recovery outermost, ErrorHandler innermost of the globals.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.HealthChecks)
	router.GET("/health/live", health.Live)
	router.GET("/health/ready", health.Ready)

	api := router.Group("/api/v1")
	if cfg.TokenValidator != nil {
		api.Use(middleware.Auth(cfg.TokenValidator))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerOrderRoutes(api, base, cfg)
	registerInventoryRoutes(api, base, cfg)
	registerPurchaseOrderRoutes(api, base, cfg)

	return router, nil
}

func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	orders := handlers.NewOrderHandler(base, cfg.Services.Fulfillment)
	payments := handlers.NewPaymentHandler(base, cfg.Services.Payments)
	deliveries := handlers.NewDeliveryHandler(base, cfg.Services.Fulfillment)

	o := rg.Group("/orders")
	o.POST("", orders.Create)
	o.GET("", orders.List)
	o.GET("/:id", orders.Get)
	o.GET("/:id/history", orders.History)
	o.POST("/:id/cancel", orders.Cancel)
	o.DELETE("/:id", orders.Cancel)
	o.POST("/:id/delivery", orders.CreateDelivery)
	o.GET("/:id/payments", payments.List)
	o.POST("/:id/payments", payments.Record)

	rg.DELETE("/payments/:id", requireRole(cfg, roleManager), payments.Delete)

	d := rg.Group("/deliveries")
	d.PATCH("/:id/status", deliveries.UpdateStatus)
	d.PATCH("/:id/assign", deliveries.Assign)
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewInventoryHandler(base, cfg.Services.Ledger)

	inv := rg.Group("/inventory")
	inv.GET("/low-stock", h.LowStock)
	inv.GET("/movements", h.Movements)
	inv.GET("/:productId", h.Get)
	inv.GET("/:productId/reconcile", h.Reconcile)
	inv.POST("/:productId/adjust", requireRole(cfg, roleManager), h.Adjust)
}

func registerPurchaseOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewPurchaseOrderHandler(base, cfg.Services.Purchasing)

	po := rg.Group("/purchase-orders")
	po.POST("", h.Create)
	po.GET("/:id", h.Get)
	po.POST("/:id/receive", h.Receive)
	po.POST("/:id/cancel", h.Cancel)
}
