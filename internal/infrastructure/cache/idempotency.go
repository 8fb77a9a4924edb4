package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/idempotency"
)

const (
	idempotencyPrefix = "idempotency:"
	staleAfter        = time.Minute
)

type idempotencyRecord struct {
	Subject     string             `json:"subject"`
	Operation   string             `json:"operation"`
	Hash        string             `json:"hash"`
	Status      idempotency.Status `json:"status"`
	StatusCode  int                `json:"status_code,omitempty"`
	ContentType string             `json:"content_type,omitempty"`
	Body        []byte             `json:"body,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps one JSON record per key, expiring after ttl.
type IdempotencyStore struct {
	client *redis.Client
	clock  clock.Clock
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, clk clock.Clock, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, clock: clk, ttl: ttl}
}

func (s *IdempotencyStore) Acquire(ctx context.Context, req idempotency.Request) (*idempotency.Replay, error) {
	now := s.clock.Now().UTC()
	pending, err := json.Marshal(idempotencyRecord{
		Subject:   req.Subject,
		Operation: req.Operation,
		Hash:      req.Hash,
		Status:    idempotency.StatusPending,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency record: %w", err)
	}

	key := idempotencyPrefix + req.Key
	ok, err := s.client.SetNX(ctx, key, pending, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if ok {
		return nil, nil
	}

	rec, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Subject != req.Subject || rec.Operation != req.Operation || rec.Hash != req.Hash {
		return nil, apperror.NewIdempotencyMismatch(req.Key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", req.Operation)
	}

	switch rec.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		replay := &idempotency.Replay{StatusCode: rec.StatusCode, ContentType: rec.ContentType, Body: rec.Body}
		return replay.Normalize(), nil
	default:
		if now.Sub(rec.UpdatedAt) <= staleAfter {
			return nil, apperror.NewIdempotencyConflict(req.Key)
		}
		won, err := s.reclaim(ctx, key, rec.UpdatedAt, pending)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, apperror.NewIdempotencyConflict(req.Key)
		}
		return nil, nil
	}
}

// reclaim overwrites a stale pending record only if it still carries the
// updated_at the caller saw. Of several concurrent reclaimers exactly one wins.
func (s *IdempotencyStore) reclaim(ctx context.Context, key string, seen time.Time, pending []byte) (bool, error) {
	won := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var current idempotencyRecord
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode idempotency key: %w", err)
		}
		if current.Status != idempotency.StatusPending || !current.UpdatedAt.Equal(seen) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, pending, s.ttl)
			return nil
		})
		if err == nil {
			won = true
		}
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reclaim idempotency key: %w", err)
	}
	return won, nil
}

// Release deletes the key while it is still pending.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	redisKey := idempotencyPrefix + key
	rec, err := s.load(ctx, redisKey)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.Status != idempotency.StatusPending {
		return nil
	}
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, statusCode int, contentType string, body any) error {
	return s.settle(ctx, key, idempotency.StatusSuccess, statusCode, contentType, body)
}

func (s *IdempotencyStore) Fail(ctx context.Context, key string, statusCode int, contentType string, body any) error {
	return s.settle(ctx, key, idempotency.StatusFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) settle(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, body any) error {
	redisKey := idempotencyPrefix + key
	rec, err := s.load(ctx, redisKey)
	if err != nil {
		return err
	}
	rec.Status = status
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.Body = idempotency.Encode(body)
	rec.UpdatedAt = s.clock.Now().UTC()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, redisKey, raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("settle idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) load(ctx context.Context, key string) (*idempotencyRecord, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("idempotency key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	var rec idempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return &rec, nil
}
