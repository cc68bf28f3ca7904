package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/pkg/cache"
)

// setupRedis sobe um miniredis e conecta o cliente real a ele.
func setupRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisClient) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := cache.NewRedisClient(mr.Addr(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisClient_GetSetDelete(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()

	_, err := client.Get(ctx, "product:1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, client.Set(ctx, "product:1", "valor", time.Minute))
	val, err := client.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.Equal(t, "valor", val)

	require.NoError(t, client.Delete(ctx, "product:1", "product:2"))
	_, err = client.Get(ctx, "product:1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisClient_IncrSetsWindow(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	n, err := client.Incr(ctx, "rate-limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Incr(ctx, "rate-limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(time.Minute + time.Second)
	n, err = client.Incr(ctx, "rate-limit:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestJSONHelpers(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()

	type summary struct {
		Total int `json:"total"`
	}

	require.NoError(t, cache.SetJSON(ctx, client, "summary:7d", summary{Total: 42}, time.Minute))

	var got summary
	assert.True(t, cache.GetJSON(ctx, client, "summary:7d", &got))
	assert.Equal(t, 42, got.Total)

	assert.False(t, cache.GetJSON(ctx, client, "summary:30d", &got))
}

func TestNopClient(t *testing.T) {
	var c cache.Client = cache.NopClient{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = c.Incr(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, cache.ErrCacheDisabled)
}
