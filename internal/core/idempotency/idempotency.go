// Package idempotency defines the key store behind the Idempotency-Key header.
package idempotency

import (
	"context"
	"encoding/json"
	"net/http"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Request identifies one idempotent call.
type Request struct {
	Key       string
	Subject   string
	Operation string
	Hash      string // sha256 of the request body
}

// Replay is a stored HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store persists idempotency keys.
//
// Acquire returns (nil, nil) when the caller owns the key, a Replay when the
// operation already finished, or an apperror when the key is in flight or
// was used for a different request. Release drops a pending key so the next
// request with it runs again.
type Store interface {
	Acquire(ctx context.Context, req Request) (*Replay, error)
	Complete(ctx context.Context, key string, statusCode int, contentType string, body any) error
	Fail(ctx context.Context, key string, statusCode int, contentType string, body any) error
	Release(ctx context.Context, key string) error
}

// Encode marshals a response body. Failures fall back to a minimal error body
// so the key still settles.
func Encode(body any) []byte {
	if body == nil {
		return nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		b, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return b
}

// Normalize fills defaults for replays stored without status or content type.
func (r *Replay) Normalize() *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.ContentType == "" && r.StatusCode != http.StatusNoContent {
		r.ContentType = "application/json"
	}
	return r
}
