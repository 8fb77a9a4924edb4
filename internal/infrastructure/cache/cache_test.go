package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/idempotency"
	"tidewater/internal/infrastructure/storage/postgres"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewClient(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewClient(context.Background(), addr)
	assert.Error(t, err)
}

func TestIdempotencyLifecycle(t *testing.T) {
	_, client := newRedis(t)
	clk := clock.NewFixed(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC))
	store := NewIdempotencyStore(client, clk, time.Hour)
	ctx := context.Background()

	req := idempotency.Request{Key: "k1", Subject: "alice", Operation: "POST /api/v1/orders", Hash: "abc"}

	replay, err := store.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay, "first caller owns the key")

	_, err = store.Acquire(ctx, req)
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency), "in flight")

	require.NoError(t, store.Complete(ctx, "k1", http.StatusCreated, "application/json", map[string]string{"id": "o-1"}))

	replay, err = store.Acquire(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, http.StatusCreated, replay.StatusCode)
	assert.Equal(t, "application/json", replay.ContentType)
	assert.JSONEq(t, `{"id":"o-1"}`, string(replay.Body))
}

func TestIdempotencyMismatch(t *testing.T) {
	_, client := newRedis(t)
	store := NewIdempotencyStore(client, clock.System{}, time.Hour)
	ctx := context.Background()

	_, err := store.Acquire(ctx, idempotency.Request{Key: "k", Operation: "POST /a", Hash: "1"})
	require.NoError(t, err)

	_, err = store.Acquire(ctx, idempotency.Request{Key: "k", Operation: "POST /a", Hash: "2"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
}

func TestIdempotencyFailedReplaysAndStaleReclaim(t *testing.T) {
	_, client := newRedis(t)
	clk := clock.NewFixed(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC))
	store := NewIdempotencyStore(client, clk, time.Hour)
	ctx := context.Background()

	failed := idempotency.Request{Key: "f", Operation: "POST /a", Hash: "1"}
	_, err := store.Acquire(ctx, failed)
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, "f", http.StatusUnprocessableEntity, "application/json", map[string]string{"code": "INSUFFICIENT_STOCK"}))

	replay, err := store.Acquire(ctx, failed)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, http.StatusUnprocessableEntity, replay.StatusCode)

	stale := idempotency.Request{Key: "s", Operation: "POST /a", Hash: "1"}
	_, err = store.Acquire(ctx, stale)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	replay, err = store.Acquire(ctx, stale)
	require.NoError(t, err)
	assert.Nil(t, replay, "stale pending key is reclaimed")

	_, err = store.Acquire(ctx, stale)
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency), "reclaimed key is in flight again")
}

func TestIdempotencyReclaimIsCompareAndSet(t *testing.T) {
	_, client := newRedis(t)
	start := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	store := NewIdempotencyStore(client, clk, time.Hour)
	ctx := context.Background()

	_, err := store.Acquire(ctx, idempotency.Request{Key: "r", Operation: "POST /a", Hash: "1"})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	pending := []byte(`{"operation":"POST /a","hash":"1","status":"pending"}`)

	won, err := store.reclaim(ctx, idempotencyPrefix+"r", start, pending)
	require.NoError(t, err)
	assert.True(t, won)

	// A second reclaimer that read the same stale record loses.
	won, err = store.reclaim(ctx, idempotencyPrefix+"r", start, pending)
	require.NoError(t, err)
	assert.False(t, won)

	won, err = store.reclaim(ctx, idempotencyPrefix+"missing", start, pending)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestIdempotencyRelease(t *testing.T) {
	_, client := newRedis(t)
	store := NewIdempotencyStore(client, clock.System{}, time.Hour)
	ctx := context.Background()

	req := idempotency.Request{Key: "rel", Operation: "POST /a", Hash: "1"}
	_, err := store.Acquire(ctx, req)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "rel"))

	replay, err := store.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay, "released key is owned by the next request")

	require.NoError(t, store.Complete(ctx, "rel", http.StatusCreated, "application/json", nil))
	require.NoError(t, store.Release(ctx, "rel"))
	replay, err = store.Acquire(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, replay, "settled keys survive release")
	assert.Equal(t, http.StatusCreated, replay.StatusCode)

	require.NoError(t, store.Release(ctx, "unknown"))
}

func TestIdempotencyKeysExpire(t *testing.T) {
	mr, client := newRedis(t)
	store := NewIdempotencyStore(client, clock.System{}, time.Minute)
	ctx := context.Background()

	req := idempotency.Request{Key: "e", Operation: "POST /a", Hash: "1"}
	_, err := store.Acquire(ctx, req)
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "e", http.StatusOK, "application/json", nil))

	mr.FastForward(2 * time.Minute)
	replay, err := store.Acquire(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func TestStreamPublisher(t *testing.T) {
	_, client := newRedis(t)
	pub := NewStreamPublisher(client, "", 100)
	ctx := context.Background()

	msg := &postgres.OutboxMessage{
		ID:            id.New(),
		AggregateType: "order",
		AggregateID:   id.New(),
		EventType:     "order.created",
		Payload:       []byte(`{"total":"200.00"}`),
		CreatedAt:     time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Handle(ctx, msg))

	entries, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "order.created", entries[0].Values["event_type"])
	assert.Equal(t, msg.AggregateID.String(), entries[0].Values["aggregate_id"])
	assert.Equal(t, `{"total":"200.00"}`, entries[0].Values["payload"])
}
