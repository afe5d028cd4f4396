// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for storing and retrieving
// request-scoped values from a context.Context.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/centra/internal/platform/ctxkey"
	"github.com/taibuivan/centra/internal/platform/sec"
)

// WithRequestID returns a new context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, requestID)
}

// GetRequestID extracts the request ID from the context.
// It returns an empty string when no request ID is present.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ctxkey.KeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger extracts the logger from the context, falling back to the
// default logger when none is present.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithPrincipal returns a new context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *sec.Principal) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPrincipal, principal)
}

// GetPrincipal extracts the authenticated principal from the context.
// It returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *sec.Principal {
	if principal, ok := ctx.Value(ctxkey.KeyPrincipal).(*sec.Principal); ok {
		return principal
	}
	return nil
}
