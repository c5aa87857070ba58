package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window request counter backed by Redis.
// Key format: ratelimit:<caller>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow counts one request for the caller and reports whether it is still
// within the window's budget. The counter key expires with its window, so
// stale windows clean themselves up.
func (rl *RateLimiter) Allow(ctx context.Context, caller string) (bool, error) {
	key := rl.key(caller, time.Now())

	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return count.Val() <= rl.limit, nil
}

func (rl *RateLimiter) key(caller string, now time.Time) string {
	windowStart := now.Truncate(rl.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%d", caller, windowStart)
}
