// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/centra/internal/platform/constants"
)

// Lockout tracks consecutive failed login attempts per account and blocks
// further attempts once the failure threshold is reached.
//
// # Architecture
//
// Reading and writing are deliberately split: IsAllowed is a pure read used
// as a gate before credentials are checked, while RecordFailure mutates the
// counter only after a password mismatch. Checking a login therefore never
// consumes budget by itself.
type Lockout struct {
	client *redis.Client
}

// NewLockout creates a login [Lockout] backed by the given Redis client.
func NewLockout(client *redis.Client) *Lockout {
	return &Lockout{client: client}
}

/*
IsAllowed reports whether the account may attempt a login.

Parameters:
  - ctx: Request context
  - account: Normalized account identifier

Returns:
  - bool: false once the failure threshold has been reached
  - error: wrapped store error; the caller decides fail-open vs fail-closed
*/
func (lockout *Lockout) IsAllowed(ctx context.Context, account string) (bool, error) {
	count, err := lockout.client.Get(ctx, lockout.key(account)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("ratelimit: failed to read lockout for %q: %w", account, err)
	}
	return count < int64(constants.LoginFailureThreshold), nil
}

/*
RecordFailure registers a failed login attempt for the account.

The lockout window is anchored at the first failure; later failures within
the window do not extend it.

Returns:
  - int64: failure count after this attempt
  - error: wrapped store error
*/
func (lockout *Lockout) RecordFailure(ctx context.Context, account string) (int64, error) {
	redisKey := lockout.key(account)

	count, err := lockout.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: failed to record login failure for %q: %w", account, err)
	}

	if count == 1 {
		if err := lockout.client.Expire(ctx, redisKey, constants.LoginLockoutDuration).Err(); err != nil {
			return count, fmt.Errorf("ratelimit: failed to set lockout window for %q: %w", account, err)
		}
	}

	return count, nil
}

/*
ClearFailures removes the failure counter after a successful login.

Returns:
  - error: wrapped store error
*/
func (lockout *Lockout) ClearFailures(ctx context.Context, account string) error {
	if err := lockout.client.Del(ctx, lockout.key(account)).Err(); err != nil {
		return fmt.Errorf("ratelimit: failed to clear login failures for %q: %w", account, err)
	}
	return nil
}

/*
RetryAfter returns the remaining lockout duration in seconds, rounded up.
It returns the full lockout duration when the TTL cannot be determined.
*/
func (lockout *Lockout) RetryAfter(ctx context.Context, account string) int {
	ttl, err := lockout.client.TTL(ctx, lockout.key(account)).Result()
	if err != nil || ttl <= 0 {
		return int(constants.LoginLockoutDuration.Seconds())
	}
	return int((ttl + time.Second - 1) / time.Second)
}

// key builds the Redis key for an account's failure counter.
func (lockout *Lockout) key(account string) string {
	return constants.RedisPrefixLoginFail + account
}
