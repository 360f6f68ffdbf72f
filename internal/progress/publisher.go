package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher fans new snapshots out to out-of-process consumers.
type Publisher interface {
	Publish(ctx context.Context, s *Snapshot) error
}

// NopPublisher drops every snapshot.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Snapshot) error {
	return nil
}

// RedisPublisher publishes snapshots as JSON on a Redis pub/sub channel.
// Delivery order across concurrent mutations is not guaranteed; consumers
// should discard snapshots whose version is not newer than the last seen.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the given channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, s *Snapshot) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("redis publisher client is nil")
	}
	if p.channel == "" {
		return fmt.Errorf("redis publisher channel is empty")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
