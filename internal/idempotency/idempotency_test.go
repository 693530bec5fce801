package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestReserve(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k1"))

	err := store.Reserve(ctx, "k1")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "in progress")

	require.NoError(t, store.Reserve(ctx, "k2"))
}

func TestCompleteKeepsKeyAndTTL(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k1"))
	require.NoError(t, store.Complete(ctx, "k1", "expense-123"))

	err := store.Reserve(ctx, "k1")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "expense-123")
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"k1"))
}

func TestCompleteWithoutReservationIsNoop(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t, time.Minute)

	require.NoError(t, store.Complete(context.Background(), "ghost", "expense-1"))
	assert.False(t, mr.Exists(keyPrefix+"ghost"))
}

func TestRelease(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k1"))
	require.NoError(t, store.Release(ctx, "k1"))
	assert.NoError(t, store.Reserve(ctx, "k1"))
}

func TestReservationExpires(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t, time.Second)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k1"))
	mr.FastForward(2 * time.Second)
	assert.NoError(t, store.Reserve(ctx, "k1"))
}

func TestRedisUnavailable(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, time.Minute)

	err := store.Reserve(context.Background(), "k1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateKey)
}
