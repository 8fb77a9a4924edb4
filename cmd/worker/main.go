// Package main is the entry point for the Tidewater background worker. It
// relays the transactional outbox and runs periodic housekeeping.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tidewater/internal/bootstrap"
	"tidewater/internal/config"
	"tidewater/internal/infrastructure/cache"
	"tidewater/internal/infrastructure/storage/postgres"
	"tidewater/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage != config.StoragePostgres {
		fmt.Println("worker requires STORAGE=postgres")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger("tidewater-worker"))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	rt, err := bootstrap.Open(ctx, cfg, "tidewater-worker")
	if err != nil {
		log.Fatalw("startup failed", "error", err)
	}
	defer rt.Close()

	var handler postgres.OutboxHandler = logHandler{}
	if rt.Redis != nil {
		handler = cache.NewStreamPublisher(rt.Redis, cfg.RedisStream, 0)
		log.Infow("relaying outbox to redis stream", "stream", cfg.RedisStream)
	}

	txm := postgres.NewTxManager(rt.Pool)
	w := &Worker{
		relay:       postgres.NewOutboxRelay(txm, handler, rt.Clock, cfg.WorkerBatchSize),
		idempotency: postgres.NewIdempotencyStore(txm, rt.Clock, cfg.IdempotencyTTL),
		pool:        rt.Pool,
		interval:    cfg.WorkerInterval,
		retention:   cfg.OutboxRetention,
	}

	log.Infow("starting worker", "interval", cfg.WorkerInterval, "batch_size", cfg.WorkerBatchSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutting down worker...")
	wg.Wait()
	log.Info("worker stopped")
}

// logHandler publishes outbox messages to the log when no broker is configured.
type logHandler struct{}

func (logHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	logger.Info(ctx, "event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"payload", string(msg.Payload),
	)
	return nil
}
