// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/sec"
	"github.com/taibuivan/centra/internal/users/account"
	"github.com/taibuivan/centra/internal/users/auth"
	"github.com/taibuivan/centra/pkg/pagination"
	"github.com/taibuivan/centra/pkg/pointer"
)

// fakeAccountRepository is an in-memory AccountRepository keyed by user ID.
type fakeAccountRepository struct {
	users map[int64]*auth.User
}

func newFakeAccountRepository(users ...*auth.User) *fakeAccountRepository {
	repo := &fakeAccountRepository{users: map[int64]*auth.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (repo *fakeAccountRepository) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := repo.users[id]; ok && !user.IsDeleted {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeAccountRepository) live() []*auth.User {
	var users []*auth.User
	for _, user := range repo.users {
		if !user.IsDeleted {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *fakeAccountRepository) List(_ context.Context) ([]*auth.User, error) {
	return repo.live(), nil
}

func (repo *fakeAccountRepository) Page(_ context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users := repo.live()
	total := len(users)

	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return users[start:end], total, nil
}

func (repo *fakeAccountRepository) Search(_ context.Context, query string, params pagination.Params) ([]*auth.User, int, error) {
	var matches []*auth.User
	for _, user := range repo.live() {
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) {
			matches = append(matches, user)
		}
	}
	return matches, len(matches), nil
}

func (repo *fakeAccountRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := repo.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	repo.users[user.ID] = user
	return nil
}

func (repo *fakeAccountRepository) UpdatePassword(_ context.Context, userID int64, newHash string) error {
	user, ok := repo.users[userID]
	if !ok || user.IsDeleted {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (repo *fakeAccountRepository) SoftDelete(_ context.Context, id int64) error {
	if user, ok := repo.users[id]; ok {
		user.IsDeleted = true
	}
	return nil
}

// fakeRevoker records RevokeAll calls.
type fakeRevoker struct {
	revoked []int64
}

func (revoker *fakeRevoker) RevokeAll(_ context.Context, userID int64) (int, error) {
	revoker.revoked = append(revoker.revoked, userID)
	return 1, nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func seedUsers(t *testing.T) (*fakeAccountRepository, *fakeRevoker, *account.Service) {
	t.Helper()

	repo := newFakeAccountRepository(
		&auth.User{ID: 7, Account: "alice", Username: "Alice", PasswordHash: hashOf(t, "oldsecret1"), Role: sec.RoleUser},
		&auth.User{ID: 8, Account: "bob", Username: "Bob", PasswordHash: hashOf(t, "bobsecret1"), Role: sec.RoleUser},
	)
	revoker := &fakeRevoker{}
	service := account.NewService(repo, revoker, slog.Default())

	return repo, revoker, service
}

var (
	alicePrincipal = &sec.Principal{ID: 7, Account: "alice", Role: sec.RoleUser}
	adminPrincipal = &sec.Principal{ID: 1, Account: "root", Role: sec.RoleAdmin}
)

/*
TestService_UpdateProfile_Ownership covers admin-or-self enforcement on
profile updates.
*/
func TestService_UpdateProfile_Ownership(t *testing.T) {
	tests := []struct {
		name      string
		actor     *sec.Principal
		targetID  int64
		wantCode  string
		wantError bool
	}{
		{"self_edit_allowed", alicePrincipal, 7, "", false},
		{"other_user_forbidden", alicePrincipal, 8, "FORBIDDEN", true},
		{"admin_edits_anyone", adminPrincipal, 8, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, service := seedUsers(t)

			user, err := service.UpdateProfile(context.Background(), tt.actor, tt.targetID, account.UpdateProfileInput{
				Username: pointer.To("Renamed"),
			})

			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Renamed", user.Username)
		})
	}
}

/*
TestService_UpdateProfile_PartialDelta verifies that absent fields stay
untouched.
*/
func TestService_UpdateProfile_PartialDelta(t *testing.T) {
	repo, _, service := seedUsers(t)

	user, err := service.UpdateProfile(context.Background(), alicePrincipal, 7, account.UpdateProfileInput{
		Email: pointer.To("alice@example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Username, "unspecified fields keep their values")
	assert.Equal(t, "alice@example.com", repo.users[7].Email)
}

/*
TestService_ChangePassword covers the self-service password path and its
session side effect.
*/
func TestService_ChangePassword(t *testing.T) {
	repo, revoker, service := seedUsers(t)
	ctx := context.Background()

	t.Run("wrong_old_password", func(t *testing.T) {
		err := service.ChangePassword(ctx, alicePrincipal, 7, account.ChangePasswordInput{
			OldPassword: "nope",
			NewPassword: "newsecret1",
		})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
		assert.Empty(t, revoker.revoked)
	})

	t.Run("success_revokes_sessions", func(t *testing.T) {
		err := service.ChangePassword(ctx, alicePrincipal, 7, account.ChangePasswordInput{
			OldPassword: "oldsecret1",
			NewPassword: "newsecret1",
		})
		require.NoError(t, err)

		assert.True(t, sec.CheckPasswordHash("newsecret1", repo.users[7].PasswordHash))
		assert.Equal(t, []int64{7}, revoker.revoked)
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		err := service.ChangePassword(ctx, alicePrincipal, 8, account.ChangePasswordInput{
			OldPassword: "bobsecret1",
			NewPassword: "newsecret1",
		})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})
}

/*
TestService_ResetPassword verifies the admin-only reset path.
*/
func TestService_ResetPassword(t *testing.T) {
	repo, revoker, service := seedUsers(t)
	ctx := context.Background()

	t.Run("non_admin_forbidden", func(t *testing.T) {
		err := service.ResetPassword(ctx, alicePrincipal, 8, "brandnew1")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("admin_resets_without_old_password", func(t *testing.T) {
		err := service.ResetPassword(ctx, adminPrincipal, 8, "brandnew1")
		require.NoError(t, err)

		assert.True(t, sec.CheckPasswordHash("brandnew1", repo.users[8].PasswordHash))
		assert.Equal(t, []int64{8}, revoker.revoked)
	})

	t.Run("short_password_rejected", func(t *testing.T) {
		err := service.ResetPassword(ctx, adminPrincipal, 8, "short")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestService_DeleteAccount verifies ownership, the soft-delete flag, and the
session flush.
*/
func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("other_user_forbidden", func(t *testing.T) {
		_, _, service := seedUsers(t)
		err := service.DeleteAccount(ctx, alicePrincipal, 8)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("self_delete", func(t *testing.T) {
		repo, revoker, service := seedUsers(t)
		require.NoError(t, service.DeleteAccount(ctx, alicePrincipal, 7))

		assert.True(t, repo.users[7].IsDeleted)
		assert.Equal(t, []int64{7}, revoker.revoked)

		_, err := service.GetProfile(ctx, 7)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("admin_deletes_anyone", func(t *testing.T) {
		repo, _, service := seedUsers(t)
		require.NoError(t, service.DeleteAccount(ctx, adminPrincipal, 8))
		assert.True(t, repo.users[8].IsDeleted)
	})

	t.Run("missing_user_404", func(t *testing.T) {
		_, _, service := seedUsers(t)
		err := service.DeleteAccount(ctx, adminPrincipal, 999)
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestService_PageAndSearch verifies pagination metadata and username search.
*/
func TestService_PageAndSearch(t *testing.T) {
	_, _, service := seedUsers(t)
	ctx := context.Background()

	users, meta, err := service.Page(ctx, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)

	matches, meta, err := service.Search(ctx, "ali", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Alice", matches[0].Username)
	assert.Equal(t, 1, meta.Total)

	_, _, err = service.Search(ctx, "  ", pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
