// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements fixed-window request throttling and login
lockout on top of Redis counters.

# Architecture

Both limiters share the same counter shape: INCR on a namespaced key,
with the window TTL attached when the counter is created. The key expiring
is what resets the window; no background sweeper is needed.

# Availability

The request limiter fails OPEN: when Redis is unreachable the request is
allowed through and the error is logged. Throttling protects capacity, and
refusing all traffic during a store outage would invert that goal. The
login lockout reader surfaces store errors instead, so callers can decide
per operation.
*/
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/centra/internal/platform/constants"
)

// Limiter enforces a fixed-window request budget per caller-supplied key.
//
// # Concurrency
//
// Two concurrent first requests for the same key can both observe count 1
// and each attach the TTL. The window start then drifts by at most the
// gap between them, which is acceptable for abuse throttling.
type Limiter struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLimiter creates a request [Limiter] backed by the given Redis client.
func NewLimiter(client *redis.Client, logger *slog.Logger) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
	}
}

/*
IsAllowed reports whether the caller identified by key may proceed, using
the default budget of [constants.DefaultWindowMaxRequests] requests per
[constants.DefaultWindowDuration].

Parameters:
  - ctx: Request context
  - key: Caller identity (IP, account, or route-specific composite)

Returns:
  - bool: true if the request is within budget, or if the store is unreachable
*/
func (limiter *Limiter) IsAllowed(ctx context.Context, key string) bool {
	return limiter.IsAllowedN(ctx, key, constants.DefaultWindowMaxRequests, constants.DefaultWindowDuration)
}

/*
IsAllowedN reports whether the caller identified by key may proceed under a
custom budget of maxRequests per window.

Parameters:
  - ctx: Request context
  - key: Caller identity
  - maxRequests: Window budget
  - window: Window duration

Returns:
  - bool: true if the request is within budget, or if the store is unreachable
*/
func (limiter *Limiter) IsAllowedN(ctx context.Context, key string, maxRequests int, window time.Duration) bool {

	// 1. Count this request within the current window
	redisKey := constants.RedisPrefixRateLimit + key
	count, err := limiter.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: throttling is a capacity guard, not an auth gate.
		limiter.logger.WarnContext(ctx, "ratelimit_store_unavailable",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return true
	}

	// 2. Anchor the window when the counter is created
	if count == 1 {
		if err := limiter.client.Expire(ctx, redisKey, window).Err(); err != nil {
			limiter.logger.WarnContext(ctx, "ratelimit_expire_failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			return true
		}
	}

	// 3. Enforce the budget
	return count <= int64(maxRequests)
}

/*
RetryAfter returns the remaining window duration for a throttled key,
rounded up to whole seconds. It returns the full default window when the
TTL cannot be determined.
*/
func (limiter *Limiter) RetryAfter(ctx context.Context, key string) int {
	ttl, err := limiter.client.TTL(ctx, constants.RedisPrefixRateLimit+key).Result()
	if err != nil || ttl <= 0 {
		return int(constants.DefaultWindowDuration.Seconds())
	}
	return int((ttl + time.Second - 1) / time.Second)
}

/*
Reset clears the counter for a key, ending its window immediately.

Returns:
  - error: wrapped store error, or nil
*/
func (limiter *Limiter) Reset(ctx context.Context, key string) error {
	if err := limiter.client.Del(ctx, constants.RedisPrefixRateLimit+key).Err(); err != nil {
		return fmt.Errorf("ratelimit: failed to reset key %q: %w", key, err)
	}
	return nil
}

/*
Count returns the current counter value for a key. Missing keys count as zero.
*/
func (limiter *Limiter) Count(ctx context.Context, key string) (int64, error) {
	count, err := limiter.client.Get(ctx, constants.RedisPrefixRateLimit+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("ratelimit: failed to read key %q: %w", key, err)
	}
	return count, nil
}
