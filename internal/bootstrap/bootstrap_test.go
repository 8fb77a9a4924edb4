package bootstrap

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/config"
	"tidewater/internal/infrastructure/cache"
)

func TestOpenMemory(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("BUSINESS_TIMEZONE", "Europe/Oslo")
	cfg, err := config.Load()
	require.NoError(t, err)

	rt, err := Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	assert.Nil(t, rt.Redis)
	assert.Nil(t, rt.Idempotency)
	require.NotNil(t, rt.Services)
	assert.Equal(t, "Europe/Oslo", rt.Clock.Now().Location().String())
}

func TestOpenMemoryWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("STORAGE", "memory")
	t.Setenv("REDIS_ADDR", mr.Addr())
	cfg, err := config.Load()
	require.NoError(t, err)

	rt, err := Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Redis)
	assert.IsType(t, &cache.IdempotencyStore{}, rt.Idempotency)

	rt.Close()
	assert.Nil(t, rt.Redis)
}
