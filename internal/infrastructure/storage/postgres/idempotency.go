package postgres

import (
	"context"
	"fmt"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/idempotency"
)

// staleAfter is how long a pending key may sit before another request reclaims it.
const staleAfter = time.Minute

type idempotencyRecord struct {
	Key         string             `db:"idempotency_key"`
	Subject     string             `db:"subject"`
	Operation   string             `db:"operation"`
	Status      idempotency.Status `db:"status"`
	RequestHash string             `db:"request_hash"`
	Response    []byte             `db:"response"`
	StatusCode  int                `db:"response_status"`
	ContentType string             `db:"response_content_type"`
	CreatedAt   time.Time          `db:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at"`
	ExpiresAt   time.Time          `db:"expires_at"`
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// IdempotencyStore keeps keys in sys_idempotency. Used when Redis is not configured.
type IdempotencyStore struct {
	txm   *TxManager
	clock clock.Clock
	ttl   time.Duration
}

func NewIdempotencyStore(txm *TxManager, clk clock.Clock, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txm: txm, clock: clk, ttl: ttl}
}

func (s *IdempotencyStore) Acquire(ctx context.Context, req idempotency.Request) (*idempotency.Replay, error) {
	now := s.clock.Now().UTC()

	var rec idempotencyRecord
	var inserted bool
	err := s.txm.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, subject, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
		RETURNING subject, operation, status, request_hash, response, response_status,
		          response_content_type, updated_at, (xmax = 0) AS inserted
	`, req.Key, req.Subject, req.Operation, idempotency.StatusPending, req.Hash, now, now.Add(s.ttl)).Scan(
		&rec.Subject, &rec.Operation, &rec.Status, &rec.RequestHash, &rec.Response,
		&rec.StatusCode, &rec.ContentType, &rec.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, TranslateError(fmt.Errorf("acquire idempotency key: %w", err))
	}
	if inserted {
		return nil, nil
	}

	if rec.Subject != req.Subject || rec.Operation != req.Operation || rec.RequestHash != req.Hash {
		return nil, apperror.NewIdempotencyMismatch(req.Key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", req.Operation)
	}

	switch rec.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		replay := &idempotency.Replay{StatusCode: rec.StatusCode, ContentType: rec.ContentType, Body: rec.Response}
		return replay.Normalize(), nil
	default:
		if now.Sub(rec.UpdatedAt) <= staleAfter {
			return nil, apperror.NewIdempotencyConflict(req.Key)
		}
		tag, err := s.txm.GetQuerier(ctx).Exec(ctx, `
			UPDATE sys_idempotency SET updated_at = $1
			WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
		`, now, req.Key, idempotency.StatusPending, rec.UpdatedAt)
		if err != nil {
			return nil, TranslateError(fmt.Errorf("reclaim idempotency key: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(req.Key)
		}
		return nil, nil
	}
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, statusCode int, contentType string, body any) error {
	return s.settle(ctx, key, idempotency.StatusSuccess, statusCode, contentType, body)
}

func (s *IdempotencyStore) Fail(ctx context.Context, key string, statusCode int, contentType string, body any) error {
	return s.settle(ctx, key, idempotency.StatusFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) settle(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, body any) error {
	_, err := s.txm.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3, response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6
	`, status, idempotency.Encode(body), statusCode, contentType, s.clock.Now().UTC(), key)
	if err != nil {
		return TranslateError(fmt.Errorf("settle idempotency key: %w", err))
	}
	return nil
}

// Release deletes the key while it is still pending.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	_, err := s.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2`, key, idempotency.StatusPending)
	if err != nil {
		return TranslateError(fmt.Errorf("release idempotency key: %w", err))
	}
	return nil
}

// CleanupExpired removes expired keys.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, s.clock.Now().UTC())
	if err != nil {
		return 0, TranslateError(fmt.Errorf("cleanup idempotency keys: %w", err))
	}
	return tag.RowsAffected(), nil
}
