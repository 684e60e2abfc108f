package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

func exerciseStore(t *testing.T, s store, advance func(time.Duration)) {
	ctx := context.Background()

	ok, err := s.Acquire(ctx, "send:u1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Acquire(ctx, "send:u1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire inside the window")

	ok, err = s.Acquire(ctx, "send:u2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	advance(61 * time.Second)
	ok, err = s.Acquire(ctx, "send:u1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "window elapsed")

	require.NoError(t, s.Release(ctx, "send:u1"))
	ok, err = s.Acquire(ctx, "send:u1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released early")
}

func TestInMemoryStore(t *testing.T) {
	s := NewInMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	exerciseStore(t, s, func(d time.Duration) { now = now.Add(d) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedis(client), mr.FastForward)
}
