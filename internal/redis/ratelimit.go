package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key pattern:
// - ratelimit:{user_id}:recovery - per-hour recovery submission attempts

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	SubmitLimit  int           // Max recovery submissions per window
	SubmitWindow time.Duration // Submission rate limit window
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		SubmitLimit:  5,
		SubmitWindow: time.Hour,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowSubmit checks whether a delegate may file another recovery request.
func (r *RateLimiter) AllowSubmit(ctx context.Context, userID string) (RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:recovery", userID)
	return r.allow(ctx, key, r.config.SubmitLimit, r.config.SubmitWindow)
}

func (r *RateLimiter) allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return RateLimitResult{}, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return RateLimitResult{}, err
		}
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		ttl = window
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		ResetIn:   ttl,
		Limit:     limit,
	}, nil
}
