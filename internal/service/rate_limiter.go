package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/placium/places-api/pkg/database"
)

// RateLimiter throttles credential endpoints with a sliding-window log in
// Redis. Each caller key holds a sorted set of request timestamps; requests
// older than the window are dropped before counting.
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow records the request and reports whether it fits the limit. A Redis
// failure is returned as an error; the caller decides whether to fail open.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key

	cutoff := strconv.FormatInt(now.Add(-window).Unix(), 10)
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", cutoff).Err(); err != nil {
		return false, fmt.Errorf("failed to trim window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count window: %w", err)
	}
	if count >= int64(limit) {
		return false, nil
	}

	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	}).Err()
	if err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	// Keep the key a little past the window so an idle caller's set expires.
	if err := r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err(); err != nil {
		return true, nil
	}

	return true, nil
}

// Remaining returns how many requests the key has left in the current window
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	redisKey := "ratelimit:" + key

	cutoff := strconv.FormatInt(time.Now().Add(-window).Unix(), 10)
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", cutoff).Err(); err != nil {
		return 0, fmt.Errorf("failed to trim window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count window: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
