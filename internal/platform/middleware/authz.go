// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package middleware provides the HTTP middleware chain for the Centra API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/constants"
	"github.com/taibuivan/centra/internal/platform/ctxutil"
	"github.com/taibuivan/centra/internal/platform/respond"
	"github.com/taibuivan/centra/internal/platform/sec"
)

// TokenResolver defines the interface needed to resolve session tokens in middleware.
//
// # Why an interface?
//
// Defining TokenResolver here decouples the middleware from the `auth` service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*sec.Principal, error)
}

// Authenticate extracts the opaque session token and resolves it to a principal.
//
// # Flow
//  1. Read the Authorization header (with or without a "Bearer " prefix).
//  2. If absent, fall back to the "token" query or form parameter.
//  3. If no token is present, the request proceeds as anonymous.
//  4. Resolve the token via [TokenResolver]; resolution also refreshes the
//     token's sliding expiration.
//  5. Inject [*sec.Principal] into the request context for downstream use.
//
// Unknown, expired, or unresolvable tokens degrade to anonymous rather than
// failing the request here; [Guard] decides whether anonymous is acceptable.
//
// # Parameters
//   - resolver: The TokenResolver instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token := ExtractToken(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Resolution ───────────────────────────────────────────
			principal, err := resolver.Resolve(request.Context(), token)
			if err != nil {
				// Store outage: the token cannot be trusted, so the request
				// continues as anonymous. Guarded routes will return 401.
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(),
					"token_resolution_failed",
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}
			if principal == nil {
				// Unknown or expired token.
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the session token from the request.
//
// The Authorization header wins; the "token" query/form parameter is the
// fallback for clients that cannot set headers (image tags, file downloads).
func ExtractToken(request *http.Request) string {
	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		// Accept both "Bearer <token>" and a bare token value.
		if strings.HasPrefix(strings.ToLower(header), "bearer ") {
			return strings.TrimSpace(header[len("bearer "):])
		}
		return strings.TrimSpace(header)
	}

	// FormValue covers both the query string and form-encoded bodies.
	return request.FormValue(constants.TokenParam)
}

// Guard blocks requests that do not satisfy the route's access policy.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. If requireLogin is set, anonymous requests abort with 401.
//  2. If role is non-empty, the principal's role must meet or exceed it
//     using [sec.UserRole.AtLeast]; otherwise abort with 403.
func Guard(role sec.UserRole, requireLogin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				if requireLogin || role != "" {
					respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if role != "" && !principal.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// It is shorthand for Guard("", true).
func RequireAuth(next http.Handler) http.Handler {
	return Guard("", true)(next)
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// It automatically implies [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return Guard(role, true)
}
