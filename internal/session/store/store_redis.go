package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const credentialKeyPrefix = "inkwell:credential:"

// RedisStore keeps the credential in Redis so a fleet of processes can share
// one service-account session. The scope segments the key per deployment.
type RedisStore struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires the stored credential after d. Zero means no expiry.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedis builds a Redis-backed credential store scoped by the given name.
func NewRedis(client *redis.Client, scope string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, scope: scope}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) key() string {
	return credentialKeyPrefix + s.scope
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	credential, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if credential == "" {
		return "", ErrNoCredential
	}
	return credential, nil
}

func (s *RedisStore) Save(ctx context.Context, credential string) error {
	if err := s.client.Set(ctx, s.key(), credential, s.ttl).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
