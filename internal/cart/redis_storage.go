package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisTimeout = 2 * time.Second
	defaultRedisTTL     = 30 * 24 * time.Hour
)

// RedisStorage persists cart and wishlist values in Redis under a
// namespace, one namespace per browsing session.
type RedisStorage struct {
	client    redis.Cmdable
	ctx       context.Context
	namespace string
	timeout   time.Duration
	ttl       time.Duration
}

// RedisOption customises a RedisStorage.
type RedisOption func(*RedisStorage)

// WithRedisTimeout bounds every Redis call.
func WithRedisTimeout(d time.Duration) RedisOption {
	return func(s *RedisStorage) { s.timeout = d }
}

// WithRedisTTL sets how long an untouched session's keys survive.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(s *RedisStorage) { s.ttl = d }
}

func NewRedisStorage(client redis.Cmdable, namespace string, opts ...RedisOption) *RedisStorage {
	s := &RedisStorage{
		client:    client,
		ctx:       context.Background(),
		namespace: namespace,
		timeout:   defaultRedisTimeout,
		ttl:       defaultRedisTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a copy scoped to one session and bound to ctx.
func (s *RedisStorage) Session(ctx context.Context, sessionID string) *RedisStorage {
	cp := *s
	cp.ctx = ctx
	cp.namespace = s.namespace + ":" + sessionID
	return &cp
}

func (s *RedisStorage) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisStorage) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStorage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Remove(key string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}
