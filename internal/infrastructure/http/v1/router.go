// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tabledger/internal/domain/ledger"
	"tabledger/internal/infrastructure/http/v1/handlers"
	"tabledger/internal/infrastructure/http/v1/middleware"
	"tabledger/internal/infrastructure/storage/postgres"
	"tabledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// LedgerService is the ledger engine
	LedgerService *ledger.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	baseHandler := handlers.NewBaseHandler()
	ledgerHandler := handlers.NewLedgerHandler(baseHandler, cfg.LedgerService)
	dashboardHandler := handlers.NewDashboardHandler(baseHandler, cfg.LedgerService)

	api := router.Group("/api/v1")
	{
		// Transaction records
		api.POST("/orders", ledgerHandler.CreateOrder)
		api.GET("/orders/pending", ledgerHandler.PendingOrders)
		api.POST("/receipts", ledgerHandler.CreateReceipt)
		api.POST("/consumption", ledgerHandler.CreateConsumption)
		api.POST("/consumption/quick", ledgerHandler.QuickConsume)
		api.POST("/sales", ledgerHandler.CreateSale)

		// Derived views
		api.GET("/stock", dashboardHandler.Stock)
		api.GET("/profit", dashboardHandler.Profit)
		api.GET("/dashboard", dashboardHandler.Dashboard)
		api.GET("/history", dashboardHandler.History)

		// Settings singleton
		api.GET("/settings", dashboardHandler.GetSettings)
		api.PUT("/settings", dashboardHandler.UpdateSettings)
	}

	return router
}
