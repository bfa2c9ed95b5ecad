package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "identity:"
	cartIDField   = "cart_id"
	checkoutField = "checkout_url"
)

// RedisStore implements Store on Redis, scoped to one shopper session.
// Keys carry the session scope so identities never leak across sessions.
// A TTL of zero stores identities without expiry (the identity lives until
// explicitly cleared or proven invalid).
type RedisStore struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed identity store for the given scope.
func NewRedisStore(client *redis.Client, scope string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		scope:  scope,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(field string) string {
	return keyPrefix + s.scope + ":" + field
}

func (s *RedisStore) get(ctx context.Context, field string) (string, error) {
	val, err := s.client.Get(ctx, s.key(field)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis get %s: %w", field, err)
	}
	return val, nil
}

func (s *RedisStore) set(ctx context.Context, field, value string) error {
	if err := s.client.Set(ctx, s.key(field), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", field, err)
	}
	return nil
}

func (s *RedisStore) CartID(ctx context.Context) (string, error) {
	return s.get(ctx, cartIDField)
}

func (s *RedisStore) SetCartID(ctx context.Context, id string) error {
	return s.set(ctx, cartIDField, id)
}

func (s *RedisStore) CheckoutURL(ctx context.Context) (string, error) {
	return s.get(ctx, checkoutField)
}

func (s *RedisStore) SetCheckoutURL(ctx context.Context, url string) error {
	return s.set(ctx, checkoutField, url)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(cartIDField), s.key(checkoutField)).Err(); err != nil {
		return fmt.Errorf("redis del identity: %w", err)
	}
	return nil
}
