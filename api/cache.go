package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voiceflow/cms/internal/config"
	"github.com/voiceflow/cms/internal/slogging"
)

// CacheService wraps an optional Redis client. When Redis is not configured
// or unreachable every operation is a cache miss; callers recompute instead
// of failing.
type CacheService struct {
	client *redis.Client
}

// NewCacheService connects to Redis when a host is configured. A failed ping
// is logged and leaves the cache disabled rather than failing startup.
func NewCacheService(cfg config.RedisConfig) *CacheService {
	if cfg.Host == "" {
		slogging.Get().Info("Redis not configured, caching disabled")
		return &CacheService{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slogging.Get().Warn("Redis connection failed, caching disabled: %v", err)
		_ = client.Close()
		return &CacheService{}
	}

	return &CacheService{client: client}
}

// NewCacheServiceWithClient wraps an existing client (used by tests)
func NewCacheServiceWithClient(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Enabled reports whether a Redis backend is connected
func (c *CacheService) Enabled() bool {
	return c.client != nil
}

// GetJSON loads a cached value into dest. The first return is false on a
// miss or when caching is disabled.
func (c *CacheService) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores a value with a TTL; a no-op when caching is disabled
func (c *CacheService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetString loads a cached string; the second return is false on a miss
func (c *CacheService) GetString(ctx context.Context, key string) (string, bool) {
	if c.client == nil {
		return "", false
	}
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// SetString stores a string with a TTL; a no-op when caching is disabled
func (c *CacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying client
func (c *CacheService) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
