package mq

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events on a pub/sub channel.
type RedisPublisher struct {
	conn    *redis.Client
	channel string
}

func NewRedisPublisher(conn *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{conn: conn, channel: channel}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Publish(ctx context.Context, _ string, data []byte) error {
	return p.conn.Publish(ctx, p.channel, data).Err()
}

// Close is a no-op; the connection is owned by main.
func (p *RedisPublisher) Close() error { return nil }
