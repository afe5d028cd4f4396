// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Window sizes, thresholds, and IP tracking TTLs.
  - Security: Token transport and Redis key taxonomy.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "centra-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # In-Process Rate Limiting (outer IP shield)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Distributed Rate Limiting (Redis fixed window)

const (
	// DefaultWindowMaxRequests is the request budget per fixed window.
	DefaultWindowMaxRequests = 10

	// DefaultWindowDuration is the length of a fixed rate-limit window.
	DefaultWindowDuration = 60 * time.Second

	// LoginFailureThreshold is the number of failed logins that locks an account.
	LoginFailureThreshold = 5

	// LoginLockoutDuration is how long an account stays locked after too many failures.
	LoginLockoutDuration = 900 * time.Second
)

// # Authentication

const (
	// TokenTTL is the sliding lifetime of an opaque session token.
	TokenTTL = 24 * time.Hour

	// HeaderAuthorization carries the session token (preferred transport).
	HeaderAuthorization = "Authorization"

	// TokenParam is the fallback query/form parameter carrying the token.
	TokenParam = "token"
)

// # Captcha

const (
	// CaptchaTTL is how long a generated challenge stays answerable.
	CaptchaTTL = 300 * time.Second

	// CaptchaLength is the number of characters in a challenge code.
	CaptchaLength = 4

	// CaptchaCharset excludes ambiguous glyphs (0/O, 1/l/I) on purpose.
	CaptchaCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

	// CaptchaImageWidth and CaptchaImageHeight size the rendered PNG.
	CaptchaImageWidth  = 120
	CaptchaImageHeight = 40
)

// # Redis Prefixes (Key Taxonomy)

const (
	// RedisPrefixToken maps an opaque token to its principal snapshot.
	RedisPrefixToken = "token:"

	// RedisPrefixUserTokens indexes the set of live tokens per user ID.
	RedisPrefixUserTokens = "user:token:"

	// RedisPrefixRateLimit holds fixed-window request counters.
	RedisPrefixRateLimit = "ratelimit:"

	// RedisPrefixLoginFail holds per-account login failure counters.
	RedisPrefixLoginFail = "ratelimit:login:fail:"

	// RedisPrefixCaptcha maps a challenge ID to its expected answer.
	RedisPrefixCaptcha = "captcha:"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)
