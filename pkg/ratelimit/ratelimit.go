// Package ratelimit implements a fixed-window request counter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key within fixed windows.
type Limiter struct {
	redis *redis.Client
}

// NewLimiter connects to Redis at the given URL.
func NewLimiter(redisURL string) (*Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Limiter{
		redis: client,
	}, nil
}

// Allow increments the counter for key in the current window and reports
// whether the request stays under limit, along with the current count.
func (l *Limiter) Allow(key string, limit int, window time.Duration) (bool, int, error) {
	ctx := context.Background()
	now := time.Now().Unix()
	windowKey := fmt.Sprintf("%s:%d", key, now/int64(window.Seconds()))

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	count := int(incr.Val())
	return count <= limit, count, nil
}

// Close releases the Redis connection.
func (l *Limiter) Close() error {
	return l.redis.Close()
}
