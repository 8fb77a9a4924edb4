package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/events"
	"tidewater/pkg/logger"
)

// OutboxStatus is the delivery state of an outbox row.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
	OutboxFailed    OutboxStatus = "failed"
)

// MaxOutboxRetries is the number of failed attempts before a message is parked.
const MaxOutboxRetries = 5

// OutboxMessage is one row of sys_outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

var _ events.Publisher = (*OutboxPublisher)(nil)

// OutboxPublisher writes domain events to sys_outbox in the caller's transaction.
type OutboxPublisher struct {
	txm   *TxManager
	clock clock.Clock
}

func NewOutboxPublisher(txm *TxManager, clk clock.Clock) *OutboxPublisher {
	return &OutboxPublisher{txm: txm, clock: clk}
}

func (p *OutboxPublisher) Publish(ctx context.Context, e events.Event) error {
	tx := p.txm.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish %s: transaction required", e.Type)
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id.New(), e.AggregateType, e.AggregateID, e.Type, payload, OutboxPending, p.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler delivers a message to the outside world.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay drains sys_outbox. Several relays may run concurrently: rows
// are claimed with FOR UPDATE SKIP LOCKED for the duration of a batch.
type OutboxRelay struct {
	txm       *TxManager
	handler   OutboxHandler
	clock     clock.Clock
	batchSize int
}

func NewOutboxRelay(txm *TxManager, handler OutboxHandler, clk clock.Clock, batchSize int) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{txm: txm, handler: handler, clock: clk, batchSize: batchSize}
}

// ProcessBatch handles up to batchSize due messages and returns how many were published.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := r.txm.GetQuerier(ctx)

		var batch []*OutboxMessage
		err := pgxscan.Select(ctx, q, &batch, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
			       retry_count, last_error, next_retry_at, created_at, published_at
			FROM sys_outbox
			WHERE status = $1 AND (next_retry_at IS NULL OR next_retry_at <= $2)
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		`, OutboxPending, r.clock.Now().UTC(), r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range batch {
			if err := r.handle(ctx, q, msg); err != nil {
				return err
			}
			if msg.Status == OutboxPublished {
				published++
			}
		}
		return nil
	})
	return published, err
}

// handle returns an error only when the outbox row itself cannot be updated;
// handler failures are recorded on the row and retried with linear backoff.
func (r *OutboxRelay) handle(ctx context.Context, q Querier, msg *OutboxMessage) error {
	now := r.clock.Now().UTC()

	if herr := r.handler.Handle(ctx, msg); herr != nil {
		msg.RetryCount++
		status := OutboxPending
		if msg.RetryCount >= MaxOutboxRetries {
			status = OutboxFailed
		}
		next := now.Add(time.Duration(msg.RetryCount) * time.Minute)
		reason := herr.Error()

		logger.Warn(ctx, "outbox delivery failed",
			"message_id", msg.ID,
			"event_type", msg.EventType,
			"retry_count", msg.RetryCount,
			"error", herr,
		)
		_, err := q.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = $1, last_error = $2, next_retry_at = $3, status = $4
			WHERE id = $5
		`, msg.RetryCount, reason, next, status, msg.ID)
		if err != nil {
			return fmt.Errorf("record outbox failure: %w", err)
		}
		msg.Status = status
		return nil
	}

	if _, err := q.Exec(ctx, `
		UPDATE sys_outbox SET status = $1, published_at = $2 WHERE id = $3
	`, OutboxPublished, now, msg.ID); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	msg.Status = OutboxPublished
	return nil
}

// MoveToDLQ parks messages that exhausted their retries in sys_outbox_dlq.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1
			RETURNING id, aggregate_type, aggregate_id, event_type, payload, retry_count, last_error, created_at
		)
		INSERT INTO sys_outbox_dlq (id, aggregate_type, aggregate_id, event_type, payload, retry_count, last_error, created_at, failed_at)
		SELECT id, aggregate_type, aggregate_id, event_type, payload, retry_count, last_error, created_at, $2
		FROM moved
	`, OutboxFailed, r.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("move to dlq: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgePublished deletes published messages older than the retention window.
func (r *OutboxRelay) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_outbox WHERE status = $1 AND published_at < $2
	`, OutboxPublished, r.clock.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}
