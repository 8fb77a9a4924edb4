package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/apperror"
	appctx "tidewater/internal/core/context"
	"tidewater/internal/core/idempotency"
	"tidewater/pkg/logger"
)

const (
	HeaderIdempotencyKey    = "Idempotency-Key"
	maxIdempotencyBodyBytes = 1 << 20
	maxIdempotencyKeyLength = 255

	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// Idempotency replays the stored response for a repeated Idempotency-Key on
// POST, PUT and PATCH. Requests without the header pass through.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			_ = c.Error(apperror.NewValidation("idempotency key too long").
				WithDetail("max_length", maxIdempotencyKeyLength))
			c.Abort()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewValidation("unreadable request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)

		replay, err := store.Acquire(c.Request.Context(), idempotency.Request{
			Key:       key,
			Subject:   appctx.GetSubject(c.Request.Context()),
			Operation: c.Request.Method + " " + c.FullPath(),
			Hash:      hex.EncodeToString(hash[:]),
		})
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			if replay.StatusCode == http.StatusNoContent {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)
		c.Next()
	}
}

// CompleteIdempotency stores a successful response for replay.
func CompleteIdempotency(c *gin.Context, statusCode int, contentType string, body any) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.Complete(c.Request.Context(), key, statusCode, contentType, body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency complete failed", "key", key, "error", err)
	}
}

// FailIdempotency stores an error response so retries get the same answer.
func FailIdempotency(c *gin.Context, statusCode int, body any) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.Fail(c.Request.Context(), key, statusCode, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency fail failed", "key", key, "error", err)
	}
}

// ReleaseIdempotency drops the pending key so a retry runs the request again.
func ReleaseIdempotency(c *gin.Context) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.Release(context.WithoutCancel(c.Request.Context()), key); err != nil {
		logger.Warn(c.Request.Context(), "idempotency release failed", "key", key, "error", err)
	}
}

func idempotencyFrom(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(ctxIdempotencyKey)
	v, exists := c.Get(ctxIdempotencyStore)
	if key == "" || !exists {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok
}
