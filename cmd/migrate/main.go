// Package main applies the embedded schema migrations.
package main

import (
	"context"
	"fmt"
	"os"

	"tidewater/internal/config"
	"tidewater/internal/infrastructure/storage/postgres"
	"tidewater/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logger("tidewater-migrate"))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, cfg.Pool("tidewater-migrate"))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatalw("migration failed", "error", err)
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
		return
	}
	log.Infow("migrations applied", "versions", applied)
}
