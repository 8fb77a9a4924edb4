package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tidewater/internal/infrastructure/storage/postgres"
)

// DefaultStream receives every relayed domain event.
const DefaultStream = "tidewater:events"

var _ postgres.OutboxHandler = (*StreamPublisher)(nil)

// StreamPublisher appends outbox messages to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher trims the stream to roughly maxLen entries; zero keeps everything.
func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *StreamPublisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":             msg.ID.String(),
			"event_type":     msg.EventType,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID.String(),
			"payload":        string(msg.Payload),
			"created_at":     msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", msg.EventType, err)
	}
	return nil
}
