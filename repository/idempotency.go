package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records which provider sessions have already been
// confirmed so redelivered webhooks and repeated capture calls cannot create
// a second order.
type IdempotencyStore interface {
	// ClaimConfirmation atomically claims a provider session id. It returns
	// false when the session was already claimed by an earlier confirmation.
	ClaimConfirmation(ctx context.Context, provider, sessionID string) (bool, error)
	// ReleaseConfirmation drops a claim, letting a failed confirmation be
	// retried on the next delivery.
	ReleaseConfirmation(ctx context.Context, provider, sessionID string) error
}

// RedisIdempotencyStore implements IdempotencyStore with SETNX keys. The TTL
// only bounds key growth; the unique Mongo index on provider_session_id
// backs the guarantee after expiry.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) key(provider, sessionID string) string {
	return fmt.Sprintf("idem:payment:%s:%s", provider, sessionID)
}

func (s *RedisIdempotencyStore) ClaimConfirmation(ctx context.Context, provider, sessionID string) (bool, error) {
	return s.client.SetNX(ctx, s.key(provider, sessionID), "confirmed", s.ttl).Result()
}

func (s *RedisIdempotencyStore) ReleaseConfirmation(ctx context.Context, provider, sessionID string) error {
	return s.client.Del(ctx, s.key(provider, sessionID)).Err()
}
