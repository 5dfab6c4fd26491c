package store

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/cartvault/pkg/redis"
)

type envelopeClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartEnvelopeKey(sessionID string) string
}

// RedisStore holds a single session's cart envelope under a namespaced key.
type RedisStore struct {
	client envelopeClient
	key    string
	ttl    time.Duration
}

// NewRedisStore binds a store to one session's envelope key.
func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	return &RedisStore{
		client: client,
		key:    client.CartEnvelopeKey(sessionID),
		ttl:    ttl,
	}, nil
}

// Read returns the stored envelope, or "" when the key is absent.
func (s *RedisStore) Read(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, s.key)
	if err != nil {
		if redis.IsNil(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading cart envelope: %w", err)
	}
	return value, nil
}

// Write replaces the stored envelope atomically.
func (s *RedisStore) Write(ctx context.Context, envelope string) error {
	if envelope == "" {
		return s.Clear(ctx)
	}
	if err := s.client.Set(ctx, s.key, envelope, s.ttl); err != nil {
		return fmt.Errorf("writing cart envelope: %w", err)
	}
	return nil
}

// Clear drops the stored envelope.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key); err != nil {
		return fmt.Errorf("clearing cart envelope: %w", err)
	}
	return nil
}
