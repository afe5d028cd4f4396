// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/centra/internal/platform/constants"
	"github.com/taibuivan/centra/internal/platform/sec"
	"github.com/taibuivan/centra/internal/users/auth"
)

// newTestRedis starts an in-process Redis and returns a connected client.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func testPrincipal(id int64) *sec.Principal {
	return &sec.Principal{
		ID:       id,
		Account:  "alice",
		Username: "Alice",
		Role:     sec.RoleUser,
	}
}

/*
TestTokenStore_IssueAndResolve verifies the round trip from issuing a token
to resolving it back into the stored principal.
*/
func TestTokenStore_IssueAndResolve(t *testing.T) {
	_, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, int64(7), principal.ID)
	assert.Equal(t, "alice", principal.Account)
	assert.Equal(t, sec.RoleUser, principal.Role)
}

/*
TestTokenStore_UnknownTokenIsNotAnError verifies that resolving an unknown
token returns nil without error.
*/
func TestTokenStore_UnknownTokenIsNotAnError(t *testing.T) {
	_, client := newTestRedis(t)
	store := auth.NewTokenStore(client)

	principal, err := store.Resolve(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, principal)
}

/*
TestTokenStore_SlidingExpiration verifies that resolving a token pushes its
expiration back to the full TTL.
*/
func TestTokenStore_SlidingExpiration(t *testing.T) {
	server, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)

	// Just before expiry, activity keeps the session alive.
	server.FastForward(constants.TokenTTL - time.Minute)
	principal, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, principal)

	// The refresh bought a fresh full window.
	server.FastForward(constants.TokenTTL - time.Minute)
	principal, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotNil(t, principal)
}

/*
TestTokenStore_IdleTokenExpires verifies that an untouched token dies after
the TTL.
*/
func TestTokenStore_IdleTokenExpires(t *testing.T) {
	server, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)

	server.FastForward(constants.TokenTTL + time.Minute)

	principal, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, principal)
}

/*
TestTokenStore_Revoke verifies single-token revocation.
*/
func TestTokenStore_Revoke(t *testing.T) {
	_, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))

	principal, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, principal)

	// Revoking again is a no-op.
	assert.NoError(t, store.Revoke(ctx, token))
}

/*
TestTokenStore_RevokeAll verifies that bulk revocation kills every session
of one user while leaving other users untouched.
*/
func TestTokenStore_RevokeAll(t *testing.T) {
	_, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	var aliceTokens []string
	for i := 0; i < 3; i++ {
		token, err := store.Issue(ctx, testPrincipal(7))
		require.NoError(t, err)
		aliceTokens = append(aliceTokens, token)
	}

	bobPrincipal := &sec.Principal{ID: 8, Account: "bob", Role: sec.RoleUser}
	bobToken, err := store.Issue(ctx, bobPrincipal)
	require.NoError(t, err)

	deleted, err := store.RevokeAll(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	for _, token := range aliceTokens {
		principal, err := store.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, principal)
	}

	principal, err := store.Resolve(ctx, bobToken)
	require.NoError(t, err)
	assert.NotNil(t, principal)

	count, err := store.ActiveTokenCount(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

/*
TestTokenStore_RevokeAllSkipsExpiredMembers verifies that stale index
entries whose token keys already expired do not break bulk revocation.
*/
func TestTokenStore_RevokeAllSkipsExpiredMembers(t *testing.T) {
	server, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	first, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)

	// Let the first token expire on its own, then keep the index alive
	// with a second session.
	server.FastForward(constants.TokenTTL - time.Minute)
	_, err = store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)
	server.FastForward(2 * time.Minute)

	principal, err := store.Resolve(ctx, first)
	require.NoError(t, err)
	require.Nil(t, principal, "first token should have expired")

	deleted, err := store.RevokeAll(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted, "only the live token key is deleted")
}

/*
TestTokenStore_StoreOutageSurfaces verifies that Resolve reports a store
outage instead of treating the token as absent.
*/
func TestTokenStore_StoreOutageSurfaces(t *testing.T) {
	server, client := newTestRedis(t)
	store := auth.NewTokenStore(client)
	ctx := context.Background()

	token, err := store.Issue(ctx, testPrincipal(7))
	require.NoError(t, err)

	server.Close()

	_, err = store.Resolve(ctx, token)
	assert.Error(t, err)
}
