// Package cache provides the Redis client used to fan progress snapshots out.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-progress/internal/platform/config"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

// Cache wraps a Redis client and the channel snapshots are published on.
type Cache struct {
	Client  *redis.Client
	Channel string
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// clientOptions translates the service settings into Redis client options.
func clientOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.Channel == "" {
		return nil, fmt.Errorf("cache channel is empty")
	}
	opts, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	return opts, nil
}

// New connects to Redis and checks that the server answers.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client, Channel: cfg.Channel}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// Name identifies the dependency in readiness reports.
func (c *Cache) Name() string {
	return "cache"
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("cache client is nil")
	}
	return c.Client.Ping(ctx).Err()
}
