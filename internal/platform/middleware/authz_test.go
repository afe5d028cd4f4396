// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/centra/internal/platform/ctxutil"
	"github.com/taibuivan/centra/internal/platform/middleware"
	"github.com/taibuivan/centra/internal/platform/sec"
)

// fakeResolver maps token strings to principals for middleware tests.
type fakeResolver struct {
	principals map[string]*sec.Principal
	err        error
}

func (resolver *fakeResolver) Resolve(_ context.Context, token string) (*sec.Principal, error) {
	if resolver.err != nil {
		return nil, resolver.err
	}
	return resolver.principals[token], nil
}

// echoPrincipal records the principal observed by the downstream handler.
func echoPrincipal(captured **sec.Principal) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestExtractToken covers the header-first, parameter-fallback extraction order.
*/
func TestExtractToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		queryToken string
		expected   string
	}{
		{"bearer_header", "Bearer abc123", "", "abc123"},
		{"bare_header", "abc123", "", "abc123"},
		{"query_param_fallback", "", "xyz789", "xyz789"},
		{"header_wins_over_param", "Bearer abc123", "xyz789", "abc123"},
		{"no_token", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/users/current"
			if tt.queryToken != "" {
				target += "?token=" + url.QueryEscape(tt.queryToken)
			}
			request := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.authHeader != "" {
				request.Header.Set("Authorization", tt.authHeader)
			}

			assert.Equal(t, tt.expected, middleware.ExtractToken(request))
		})
	}
}

/*
TestExtractToken_FormBody verifies that tokens arrive via form-encoded bodies.
*/
func TestExtractToken_FormBody(t *testing.T) {
	body := strings.NewReader("token=formtoken")
	request := httptest.NewRequest(http.MethodPost, "/users/logout", body)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, "formtoken", middleware.ExtractToken(request))
}

/*
TestAuthenticate_InjectsPrincipal verifies that a valid token puts the
resolved principal into the request context.
*/
func TestAuthenticate_InjectsPrincipal(t *testing.T) {
	resolver := &fakeResolver{principals: map[string]*sec.Principal{
		"good-token": {ID: 7, Account: "alice", Role: sec.RoleUser},
	}}

	var seen *sec.Principal
	handler := middleware.Authenticate(resolver)(echoPrincipal(&seen))

	request := httptest.NewRequest(http.MethodGet, "/users/current", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.ID)
	assert.Equal(t, "alice", seen.Account)
}

/*
TestAuthenticate_UnknownTokenIsAnonymous verifies that an unresolvable token
does not fail the request outright.
*/
func TestAuthenticate_UnknownTokenIsAnonymous(t *testing.T) {
	resolver := &fakeResolver{principals: map[string]*sec.Principal{}}

	var seen *sec.Principal
	handler := middleware.Authenticate(resolver)(echoPrincipal(&seen))

	request := httptest.NewRequest(http.MethodGet, "/users/current", nil)
	request.Header.Set("Authorization", "Bearer stale-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)
}

/*
TestAuthenticate_StoreErrorIsAnonymous verifies that a store outage degrades
tokens to anonymous instead of granting access.
*/
func TestAuthenticate_StoreErrorIsAnonymous(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("connection refused")}

	var seen *sec.Principal
	handler := middleware.Authenticate(resolver)(echoPrincipal(&seen))

	request := httptest.NewRequest(http.MethodGet, "/users/current", nil)
	request.Header.Set("Authorization", "Bearer any-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Nil(t, seen)
}

/*
TestGuard covers the login and role access policies.
*/
func TestGuard(t *testing.T) {
	tests := []struct {
		name         string
		principal    *sec.Principal
		role         sec.UserRole
		requireLogin bool
		wantStatus   int
	}{
		{"anonymous_open_route", nil, "", false, http.StatusOK},
		{"anonymous_login_required", nil, "", true, http.StatusUnauthorized},
		{"anonymous_role_required", nil, sec.RoleAdmin, false, http.StatusUnauthorized},
		{"user_login_required", &sec.Principal{ID: 1, Role: sec.RoleUser}, "", true, http.StatusOK},
		{"user_needs_admin", &sec.Principal{ID: 1, Role: sec.RoleUser}, sec.RoleAdmin, true, http.StatusForbidden},
		{"admin_needs_admin", &sec.Principal{ID: 1, Role: sec.RoleAdmin}, sec.RoleAdmin, true, http.StatusOK},
		{"admin_satisfies_user_role", &sec.Principal{ID: 1, Role: sec.RoleAdmin}, sec.RoleUser, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.Guard(tt.role, tt.requireLogin)(
				http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
					writer.WriteHeader(http.StatusOK)
				}),
			)

			request := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.principal != nil {
				ctx := ctxutil.WithPrincipal(request.Context(), tt.principal)
				request = request.WithContext(ctx)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
