package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements RateLimitStore backed by Redis, so
// the limit holds across API replicas. Uses a fixed window counter:
// INCR on the key, EXPIRE on first hit in the window.
//
// Fails open: when Redis is unreachable the request is allowed, the
// error logged, and the fail-open metric incremented when a metrics
// sink is attached.
type RedisRateLimitStore struct {
	client  *redis.Client
	metrics *Metrics
	logger  *slog.Logger
}

// NewRedisRateLimitStore creates a Redis-backed rate limit store.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client: client,
		logger: slog.Default(),
	}
}

// WithMetrics attaches a metrics sink for fail-open tracking.
func (s *RedisRateLimitStore) WithMetrics(m *Metrics) *RedisRateLimitStore {
	s.metrics = m
	return s
}

// Allow checks if a request from the given key should be allowed.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int) {
	redisKey := "ratelimit:" + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("rate limit store unavailable, failing open",
			"error", err, "key", key)
		if s.metrics != nil {
			s.metrics.IncRateLimitRedisErrors()
		}
		return true, 0
	}

	if int(incr.Val()) <= config.RequestsPerWindow {
		return true, 0
	}

	ttl, err := s.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		return false, int(config.WindowDuration.Seconds())
	}
	return false, int(ttl / time.Second)
}
