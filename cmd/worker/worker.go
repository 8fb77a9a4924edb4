package main

import (
	"context"
	"time"

	"tidewater/internal/infrastructure/storage/postgres"
	"tidewater/pkg/logger"
)

// housekeepingEvery is how many relay ticks pass between maintenance runs.
const housekeepingEvery = 30

// Worker drains the outbox on a fixed interval.
type Worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	pool        *postgres.Pool
	interval    time.Duration
	retention   time.Duration
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
			tick++
			if tick%housekeepingEvery == 0 {
				w.housekeeping(ctx)
			}
		}
	}
}

// drain processes full batches back to back until the outbox is empty.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			logger.Error(ctx, "outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		logger.Debug(ctx, "outbox batch published", "count", n)
	}
}

func (w *Worker) housekeeping(ctx context.Context) {
	if n, err := w.relay.MoveToDLQ(ctx); err != nil {
		logger.Error(ctx, "move to dlq failed", "error", err)
	} else if n > 0 {
		logger.Warn(ctx, "outbox messages parked in dlq", "count", n)
	}

	if n, err := w.relay.PurgePublished(ctx, w.retention); err != nil {
		logger.Error(ctx, "purge outbox failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "purged published outbox messages", "count", n)
	}

	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		logger.Error(ctx, "idempotency cleanup failed", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "expired idempotency keys removed", "count", n)
	}

	w.pool.LogStats(ctx)
}
