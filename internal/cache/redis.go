package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
)

// RedisCache keeps scraped page content in Redis with a TTL
type RedisCache struct {
	client *redis.Client
	logger logging.Logger
}

// NewRedisCache creates a Redis-backed cache from cfg.Redis
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisCache{
		client: redis.NewClient(opts),
		logger: logging.GetGlobalLogger().WithField("component", "redis_cache"),
	}, nil
}

// New picks the Redis cache when enabled and the no-op cache otherwise
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Redis.Enabled {
		return NoopCache{}, nil
	}
	return NewRedisCache(cfg)
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("miss")
		return "", false, nil
	}
	if err != nil {
		metrics.ObserveCache("error")
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	metrics.ObserveCache("hit")
	return value, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.ObserveCache("error")
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	metrics.ObserveCache("set")
	r.logger.Debug("Cached listing content", map[string]interface{}{
		"key":   key,
		"bytes": len(value),
		"ttl":   ttl.String(),
	})
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
