// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/centra/internal/platform/constants"
	"github.com/taibuivan/centra/internal/platform/sec"
)

// TokenStore manages opaque session tokens backed by Redis.
//
// # Key Layout
//
//   - token:<token>        → JSON principal snapshot, TTL [constants.TokenTTL]
//   - user:token:<userID>  → set of the user's live tokens (bulk revoke index)
//
// # Sliding Expiration
//
// Every successful [TokenStore.Resolve] pushes both keys back to the full
// TTL, so a session only dies after a full day of inactivity. The per-user
// index can therefore accumulate stale members when token keys expire on
// their own; RevokeAll tolerates missing members for exactly this reason.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a [TokenStore] backed by the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

/*
Issue creates a new session token for the principal.

Parameters:
  - ctx: Request context
  - principal: Identity snapshot to store behind the token

Returns:
  - string: The new opaque token
  - error: wrapped store or entropy error
*/
func (store *TokenStore) Issue(ctx context.Context, principal *sec.Principal) (string, error) {

	// 1. Generate the opaque token value
	token, err := sec.GenerateToken()
	if err != nil {
		return "", err
	}

	// 2. Serialize the principal snapshot
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", fmt.Errorf("auth: failed to marshal principal: %w", err)
	}

	// 3. Store the token and index it under the user atomically
	tokenKey := store.tokenKey(token)
	indexKey := store.indexKey(principal.ID)

	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey, payload, constants.TokenTTL)
		pipe.SAdd(ctx, indexKey, token)
		pipe.Expire(ctx, indexKey, constants.TokenTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("auth: failed to store token: %w", err)
	}

	return token, nil
}

/*
Resolve looks up a token and refreshes its sliding expiration.

Parameters:
  - ctx: Request context
  - token: The opaque token presented by the client

Returns:
  - *sec.Principal: The stored identity snapshot, or nil when the token is
    unknown or expired (absence is not an error)
  - error: wrapped store error when Redis is unreachable
*/
func (store *TokenStore) Resolve(ctx context.Context, token string) (*sec.Principal, error) {
	tokenKey := store.tokenKey(token)

	// 1. Look up the principal snapshot
	payload, err := store.client.Get(ctx, tokenKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: failed to resolve token: %w", err)
	}

	var principal sec.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		// A corrupt snapshot is unusable; treat it like an unknown token.
		_ = store.client.Del(ctx, tokenKey).Err()
		return nil, nil
	}

	// 2. Push the sliding window back to the full TTL
	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, tokenKey, constants.TokenTTL)
		pipe.Expire(ctx, store.indexKey(principal.ID), constants.TokenTTL)
		return nil
	})
	if err != nil {
		// The lookup already succeeded; a failed refresh only shortens the
		// session, it does not invalidate this request.
		return &principal, nil
	}

	return &principal, nil
}

/*
Revoke deletes a single token, ending that session immediately.

Revoking a token that no longer exists is a no-op, not an error.

Returns:
  - error: wrapped store error
*/
func (store *TokenStore) Revoke(ctx context.Context, token string) error {
	tokenKey := store.tokenKey(token)

	// The snapshot is needed to locate the user index entry.
	payload, err := store.client.Get(ctx, tokenKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("auth: failed to revoke token: %w", err)
	}

	var principal sec.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		// Corrupt snapshot: drop the key itself, the index entry is unreachable.
		return store.client.Del(ctx, tokenKey).Err()
	}

	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tokenKey)
		pipe.SRem(ctx, store.indexKey(principal.ID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("auth: failed to revoke token: %w", err)
	}

	return nil
}

/*
RevokeAll deletes every live token belonging to the user.

Index members whose token keys already expired are skipped silently.

Returns:
  - int: number of token keys deleted
  - error: wrapped store error
*/
func (store *TokenStore) RevokeAll(ctx context.Context, userID int64) (int, error) {
	indexKey := store.indexKey(userID)

	// 1. Enumerate the user's live tokens
	tokens, err := store.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("auth: failed to list tokens for user %d: %w", userID, err)
	}

	// 2. Delete the token keys and the index in one transaction
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, store.tokenKey(token))
	}
	keys = append(keys, indexKey)

	var deleted *redis.IntCmd
	_, err = store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("auth: failed to revoke tokens for user %d: %w", userID, err)
	}

	// Exclude the index key itself from the session count.
	count := int(deleted.Val()) - 1
	if count < 0 {
		count = 0
	}
	return count, nil
}

/*
ActiveTokenCount returns the number of tokens indexed for the user.

The count may include tokens that expired but were not yet pruned from
the index; it is an upper bound, intended for diagnostics.
*/
func (store *TokenStore) ActiveTokenCount(ctx context.Context, userID int64) (int, error) {
	count, err := store.client.SCard(ctx, store.indexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("auth: failed to count tokens for user %d: %w", userID, err)
	}
	return int(count), nil
}

// tokenKey builds the Redis key holding a token's principal snapshot.
func (store *TokenStore) tokenKey(token string) string {
	return constants.RedisPrefixToken + token
}

// indexKey builds the Redis key of a user's token set.
func (store *TokenStore) indexKey(userID int64) string {
	return constants.RedisPrefixUserTokens + strconv.FormatInt(userID, 10)
}
