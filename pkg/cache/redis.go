package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed Store for processes that want to share
// most-recent-value resolutions.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. Entries expire after ttl;
// pass 0 to keep them until explicitly invalidated.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (string, bool, error) {
	value, err := s.redis.Get(ctx, key.String()).Result()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return "", false, nil
		}
		CacheErrors.WithLabelValues("get").Inc()
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	CacheHits.WithLabelValues("redis").Inc()
	return value, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key Key, value string) error {
	if err := s.redis.Set(ctx, key.String(), value, s.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate implements Store.
func (s *RedisStore) Invalidate(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
