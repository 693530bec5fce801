// Package idempotency reserves client-supplied idempotency keys in Redis so a
// retried RecordExpense call cannot record the same expense twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "splitledger:idempotency:"
	pending   = "pending"
)

// ErrDuplicateKey is returned when a key has already been reserved.
var ErrDuplicateKey = errors.New("idempotency key already used")

// Store reserves keys for the lifetime of a request and remembers the result
// of the ones that completed.
type Store interface {
	Reserve(ctx context.Context, key string) error
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

// RedisStore is a Store on a Redis key per reservation.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. Reservations expire after ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Reserve claims key. If the key is already held, the returned error wraps
// ErrDuplicateKey and names the recorded result when there is one.
func (s *RedisStore) Reserve(ctx context.Context, key string) error {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pending, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil
	}

	existing, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	if existing == "" || existing == pending {
		return fmt.Errorf("%w: %s is in progress", ErrDuplicateKey, key)
	}
	return fmt.Errorf("%w: %s already produced %s", ErrDuplicateKey, key, existing)
}

// Complete records result against a reserved key, keeping its expiry.
func (s *RedisStore) Complete(ctx context.Context, key, result string) error {
	err := s.client.SetArgs(ctx, keyPrefix+key, result, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release drops a reservation so the key can be retried.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
