// Package bootstrap opens the storage and cache connections shared by the
// binaries and wires the services on top of them.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tidewater/internal/app"
	"tidewater/internal/config"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/idempotency"
	"tidewater/internal/infrastructure/cache"
	"tidewater/internal/infrastructure/storage/memory"
	"tidewater/internal/infrastructure/storage/postgres"
	"tidewater/internal/infrastructure/storage/postgres/pgstore"
	"tidewater/pkg/logger"
)

// Runtime is everything a binary needs after startup.
type Runtime struct {
	Config   *config.Config
	Clock    clock.Clock
	Backend  app.Backend
	Services *app.Services

	// Pool is nil for memory storage.
	Pool *postgres.Pool
	// Redis is nil when REDIS_ADDR is empty.
	Redis *redis.Client
	// Idempotency is nil when neither Redis nor Postgres is available.
	Idempotency idempotency.Store
}

// Open connects to the configured backends. applicationName tags the
// Postgres connections.
func Open(ctx context.Context, cfg *config.Config, applicationName string) (*Runtime, error) {
	rt := &Runtime{
		Config: cfg,
		Clock:  clock.InLocation(clock.System{}, cfg.Location()),
	}

	switch cfg.Storage {
	case config.StorageMemory:
		rt.Backend = memory.NewStore().Backend()
		logger.Warn(ctx, "using in-memory storage; data is lost on exit")

	default:
		pool, err := postgres.NewPool(ctx, cfg.Pool(applicationName))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.Pool = pool

		if cfg.MigrateOnStart {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				rt.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info(ctx, "migrations applied", "applied", applied)
		}

		rt.Backend, err = pgstore.Backend(pool, rt.Clock)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Idempotency = postgres.NewIdempotencyStore(postgres.NewTxManager(pool), rt.Clock, cfg.IdempotencyTTL)
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.Redis = client
		rt.Idempotency = cache.NewIdempotencyStore(client, rt.Clock, cfg.IdempotencyTTL)
	}

	rt.Services = app.NewServices(rt.Backend, rt.Clock, cfg.DeliveryPolicy())
	return rt, nil
}

// Close releases connections. Safe to call more than once.
func (rt *Runtime) Close() {
	if rt.Redis != nil {
		_ = rt.Redis.Close()
		rt.Redis = nil
	}
	if rt.Pool != nil {
		rt.Pool.Close()
		rt.Pool = nil
	}
}
