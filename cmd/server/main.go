// Package main is the entry point for the tabledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabledger/internal/domain/ledger"
	v1 "tabledger/internal/infrastructure/http/v1"
	"tabledger/internal/infrastructure/storage/postgres"
	"tabledger/internal/infrastructure/storage/postgres/ledger_repo"
	"tabledger/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tabledger server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Ledger engine ---
	txManager := postgres.NewTxManager(pool)
	ledgerService := ledger.NewService(
		ledger_repo.NewOrderRepo(txManager),
		ledger_repo.NewReceiptRepo(txManager),
		ledger_repo.NewConsumptionRepo(txManager),
		ledger_repo.NewSaleRepo(txManager),
		ledger_repo.NewSettingsRepo(txManager),
		ledger_repo.NewStockRepo(txManager),
		txManager,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:          pool,
		Logger:        log,
		LedgerService: ledgerService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// mustEnv returns the environment variable value or exits.
func mustEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s environment variable is required\n", key)
		os.Exit(1)
	}
	return val
}
