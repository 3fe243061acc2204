// Package main provides a CLI tool for bootstrapping the ledger database:
// schema creation plus the pre-seeded settings singleton.
package main

import (
	"context"
	"fmt"
	"os"

	"tabledger/internal/core/id"
	"tabledger/internal/core/types"
	"tabledger/internal/infrastructure/storage/postgres"
	"tabledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if err := seedSettings(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed settings", "error", err)
	}

	log.Info("seeding complete")
}

// seedSettings inserts the settings singleton unless one already exists.
// Defaults: 60 buffer days, 0.4125 BHD cost per tablet, 0.6500 BHD sale
// price per tablet.
func seedSettings(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		return fmt.Errorf("count settings: %w", err)
	}
	if count > 0 {
		log.Info("settings already seeded, skipping")
		return nil
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO settings (id, buffer_days, cost_per_tablet, sale_price_per_tablet)
		VALUES ($1, $2, $3, $4)
	`, id.New(), 60, types.MustMoney("0.4125"), types.MustMoney("0.6500"))
	if err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}

	log.Info("settings singleton seeded")
	return nil
}
