package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/warehouse/services/arrivals/config"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisCache provides caching using Redis
type RedisCache struct {
	client  *redis.Client
	enabled bool
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		// Callers warn and continue without caching; hand back a disabled
		// cache so that path stays usable
		return &RedisCache{enabled: false}, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:  client,
		enabled: true,
	}, nil
}

// ErrCacheMiss is returned when a key is absent or the cache is disabled
var ErrCacheMiss = errors.New("cache miss")

// Get retrieves a value from cache. A nil or disabled cache always misses.
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if c == nil || !c.enabled {
		return ErrCacheMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return errors.Wrap(err, "failed to get value from Redis")
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}

	return nil
}

// Set stores a value in cache with optional expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c == nil || !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	err = c.client.Set(ctx, key, data, expiration).Err()
	if err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}

	return nil
}

// Delete removes a key from the cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c == nil || !c.enabled {
		return nil
	}

	return errors.Wrap(c.client.Del(ctx, key).Err(), "failed to delete value from Redis")
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c == nil || !c.enabled || c.client == nil {
		return nil
	}

	return c.client.Close()
}
