// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, &RedisCache{client: client, logger: zerolog.Nop()}
}

func TestRedisCache_SetGet(t *testing.T) {
	_, c := newTestRedisCache(t)

	c.Set("board:Production", "snapshot", 5*time.Minute)

	val, ok := c.Get("board:Production")
	require.True(t, ok)
	assert.Equal(t, "snapshot", val)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestRedisCache_Miss(t *testing.T) {
	_, c := newTestRedisCache(t)

	val, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, c := newTestRedisCache(t)

	c.Set("shortlived", "v", 100*time.Millisecond)
	mr.FastForward(200 * time.Millisecond)

	_, ok := c.Get("shortlived")
	assert.False(t, ok, "entry should be gone after the TTL elapses")
}

func TestRedisCache_StructRoundTrip(t *testing.T) {
	_, c := newTestRedisCache(t)

	// JSON round trip loses the concrete type; callers re-decode the generic
	// value themselves.
	c.Set("snapshot", map[string]any{"role": "Office", "count": float64(3)}, time.Minute)

	val, ok := c.Get("snapshot")
	require.True(t, ok)
	m, ok := val.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Office", m["role"])
	assert.Equal(t, float64(3), m["count"])
}

func TestRedisCache_DeleteAndClear(t *testing.T) {
	_, c := newTestRedisCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestRedisCache_Ping(t *testing.T) {
	mr, c := newTestRedisCache(t)

	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
