package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSlidingRedisWindow(t *testing.T) {
	mr, client := newRedis(t)
	limiter := SlidingRedis{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "ip:10.0.0.1", window, max)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, max-(i+1), remaining)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "ip:10.0.0.1", window, max)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "ip:10.0.0.1", window, max)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestSlidingRedisWithoutClientAllows(t *testing.T) {
	allowed, remaining, _, err := SlidingRedis{}.Allow(context.Background(), "k", time.Second, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 3, remaining)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemory("test")
	ctx := context.Background()

	allowed, remaining, reset, err := limiter.Allow(ctx, "client:dash", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, remaining)
	require.True(t, reset.After(time.Now()))

	allowed, _, _, err = limiter.Allow(ctx, "client:dash", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, remaining, _, err = limiter.Allow(ctx, "client:dash", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	allowed, _, _, err = limiter.Allow(ctx, "client:other", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
}
