// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/centra/internal/platform/constants"
	"github.com/taibuivan/centra/internal/platform/ratelimit"
)

// newTestRedis starts an in-process Redis and returns a connected client.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

/*
TestLimiter_WindowBudget verifies that requests within the budget pass and
the first request over budget is denied.
*/
func TestLimiter_WindowBudget(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	for i := 0; i < constants.DefaultWindowMaxRequests; i++ {
		assert.True(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"), "request %d should be allowed", i+1)
	}

	assert.False(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"), "request over budget should be denied")
}

/*
TestLimiter_KeysAreIndependent verifies that exhausting one key's budget
does not affect another key.
*/
func TestLimiter_KeysAreIndependent(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	for i := 0; i < constants.DefaultWindowMaxRequests+3; i++ {
		limiter.IsAllowed(ctx, "ip:10.0.0.1")
	}

	assert.False(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"))
	assert.True(t, limiter.IsAllowed(ctx, "ip:10.0.0.2"))
}

/*
TestLimiter_WindowExpiry verifies that the budget resets after the
window TTL elapses.
*/
func TestLimiter_WindowExpiry(t *testing.T) {
	server, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	for i := 0; i < constants.DefaultWindowMaxRequests; i++ {
		limiter.IsAllowed(ctx, "ip:10.0.0.1")
	}
	require.False(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"))

	// Let the window expire.
	server.FastForward(constants.DefaultWindowDuration + time.Second)

	assert.True(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"), "new window should start fresh")
}

/*
TestLimiter_CustomBudget verifies IsAllowedN with a route-specific budget.
*/
func TestLimiter_CustomBudget(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	assert.True(t, limiter.IsAllowedN(ctx, "captcha:10.0.0.1", 2, time.Minute))
	assert.True(t, limiter.IsAllowedN(ctx, "captcha:10.0.0.1", 2, time.Minute))
	assert.False(t, limiter.IsAllowedN(ctx, "captcha:10.0.0.1", 2, time.Minute))
}

/*
TestLimiter_FailsOpen verifies that a store outage lets requests through
instead of blocking all traffic.
*/
func TestLimiter_FailsOpen(t *testing.T) {
	server, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	server.Close()

	assert.True(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"), "store outage must not deny requests")
}

/*
TestLimiter_Reset verifies that resetting a key restores its full budget.
*/
func TestLimiter_Reset(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := ratelimit.NewLimiter(client, slog.Default())
	ctx := context.Background()

	for i := 0; i < constants.DefaultWindowMaxRequests; i++ {
		limiter.IsAllowed(ctx, "ip:10.0.0.1")
	}
	require.False(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"))

	require.NoError(t, limiter.Reset(ctx, "ip:10.0.0.1"))

	assert.True(t, limiter.IsAllowed(ctx, "ip:10.0.0.1"))

	count, err := limiter.Count(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
