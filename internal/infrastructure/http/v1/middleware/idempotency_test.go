package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/infrastructure/cache"
	"tidewater/internal/infrastructure/http/v1/middleware"
)

// newEngine serves POST /orders with handle, behind the error and
// idempotency middleware backed by an in-process Redis.
func newEngine(t *testing.T, handle func(c *gin.Context, attempt int)) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewIdempotencyStore(client, clock.System{}, time.Hour)

	calls := 0
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.ErrorHandler(), middleware.Idempotency(store))
	r.POST("/orders", func(c *gin.Context) {
		calls++
		handle(c, calls)
	})
	return r, &calls
}

func post(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"qty":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdempotencyKey, key)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func created(c *gin.Context) {
	body := gin.H{"id": "o-1"}
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", body)
	c.JSON(http.StatusCreated, body)
}

func TestIdempotencyRetriesAfterTransientErrors(t *testing.T) {
	tests := []struct {
		name  string
		first func(c *gin.Context)
	}{
		{
			name:  "concurrent modification",
			first: func(c *gin.Context) { _ = c.Error(apperror.NewConcurrentModification("inventory", "p-1")) },
		},
		{
			name:  "internal error",
			first: func(c *gin.Context) { _ = c.Error(assert.AnError) },
		},
		{
			name:  "panic",
			first: func(c *gin.Context) { panic("boom") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, calls := newEngine(t, func(c *gin.Context, attempt int) {
				if attempt == 1 {
					tt.first(c)
					return
				}
				created(c)
			})

			rec := post(r, "retry-1")
			assert.GreaterOrEqual(t, rec.Code, http.StatusConflict)

			rec = post(r, "retry-1")
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.Equal(t, 2, *calls)

			rec = post(r, "retry-1")
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
			assert.Equal(t, 2, *calls)
		})
	}
}

func TestIdempotencyReplaysBusinessRejections(t *testing.T) {
	r, calls := newEngine(t, func(c *gin.Context, attempt int) {
		if attempt == 1 {
			_ = c.Error(apperror.NewInsufficientStock("p-1", decimal.NewFromInt(5), decimal.NewFromInt(2)))
			return
		}
		created(c)
	})

	first := post(r, "reject-1")
	require.Equal(t, http.StatusUnprocessableEntity, first.Code)

	again := post(r, "reject-1")
	assert.Equal(t, http.StatusUnprocessableEntity, again.Code)
	assert.JSONEq(t, first.Body.String(), again.Body.String())
	assert.Equal(t, 1, *calls)
}
