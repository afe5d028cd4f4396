// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/sec"
	"github.com/taibuivan/centra/internal/platform/validate"
	"github.com/taibuivan/centra/internal/users/auth"
	"github.com/taibuivan/centra/pkg/pagination"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// It ensures that profile updates, password changes, and account removal
// follow the ownership rules and trigger the required session cleanup.
type Service struct {
	accountRepository AccountRepository
	sessions          SessionRevoker
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	sessions SessionRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessions:          sessions,
		logger:            logger,
	}
}

// # Profile Access

/*
GetProfile retrieves the profile of a user.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID int64) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
ListAll returns every live account. Admin-only; the handler enforces the role.

Parameters:
  - context: context.Context

Returns:
  - []*auth.User: All live accounts
  - error: Storage failures
*/
func (service *Service) ListAll(context context.Context) ([]*auth.User, error) {
	users, err := service.accountRepository.List(context)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, nil
}

/*
Page returns one page of live accounts plus response metadata.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: The requested page
  - pagination.Meta: Page metadata for the response envelope
  - error: Storage failures
*/
func (service *Service) Page(context context.Context, params pagination.Params) ([]*auth.User, pagination.Meta, error) {
	users, total, err := service.accountRepository.Page(context, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_page_failed: %w", err)
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Search finds live accounts by username fragment, case-insensitively.

Parameters:
  - context: context.Context
  - query: string
  - params: pagination.Params

Returns:
  - []*auth.User: The matching page
  - pagination.Meta: Page metadata for the response envelope
  - error: Validation or storage failures
*/
func (service *Service) Search(context context.Context, query string, params pagination.Params) ([]*auth.User, pagination.Meta, error) {
	query = strings.TrimSpace(query)

	v := &validate.Validator{}
	if err := v.Required("query", query).MaxLen("query", query, 64).Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	users, total, err := service.accountRepository.Search(context, query, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_search_failed: %w", err)
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Profile Management

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	Username  *string `json:"username"`
	Gender    *int16  `json:"gender"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Profile   *string `json:"profile"`
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (Must be the target user or an admin)
  - userID: int64
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, actor *sec.Principal, userID int64, input UpdateProfileInput) (*auth.User, error) {

	// Ownership: users edit themselves, admins edit anyone
	if !actor.CanActOn(userID) {
		return nil, apperr.Forbidden("You may only edit your own profile")
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Profile != nil {
		user.Profile = *input.Profile
	}

	v := &validate.Validator{}
	v.Required("username", user.Username).
		MaxLen("username", user.Username, 64).
		Range("gender", int(user.Gender), 0, 2)
	if user.Email != "" {
		v.Email("email", user.Email)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_profile_updated",
		slog.Int64("user_id", userID),
		slog.Int64("actor_id", actor.ID),
	)

	return user, nil
}

// # Password Management

// ChangePasswordInput carries the old and new password for a self-service change.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

/*
ChangePassword verifies the current password and replaces it.

Description: This is the self-service path; even admins must present the old
password when changing their own. Every other session of the user is revoked
afterwards so a stolen token dies with the old password.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (Must be the target user or an admin)
  - userID: int64
  - input: ChangePasswordInput

Returns:
  - error: Forbidden, unauthorized, validation, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, actor *sec.Principal, userID int64, input ChangePasswordInput) error {

	if !actor.CanActOn(userID) {
		return apperr.Forbidden("You may only change your own password")
	}

	v := &validate.Validator{}
	if err := v.Required("old_password", input.OldPassword).
		Required("new_password", input.NewPassword).
		MinLen("new_password", input.NewPassword, 8).
		MaxLen("new_password", input.NewPassword, 72).
		Err(); err != nil {
		return err
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(input.OldPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	return service.replacePassword(context, actor, user, input.NewPassword)
}

/*
ResetPassword sets a new password without the old one. Admin-only; the
handler enforces the role, the service re-checks it as defense in depth.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (Must be an admin)
  - userID: int64
  - newPassword: string

Returns:
  - error: Forbidden, validation, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, actor *sec.Principal, userID int64, newPassword string) error {

	if actor == nil || !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators may reset passwords")
	}

	v := &validate.Validator{}
	if err := v.Required("new_password", newPassword).
		MinLen("new_password", newPassword, 8).
		MaxLen("new_password", newPassword, 72).
		Err(); err != nil {
		return err
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	return service.replacePassword(context, actor, user, newPassword)
}

// replacePassword hashes and stores the new password, then flushes the
// target user's sessions.
func (service *Service) replacePassword(context context.Context, actor *sec.Principal, user *auth.User, newPassword string) error {
	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account_service_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, user.ID, newHash); err != nil {
		return fmt.Errorf("account_service_update_password_failed: %w", err)
	}

	// Force global sign-out: tokens issued under the old password are dead.
	if _, err := service.sessions.RevokeAll(context, user.ID); err != nil {
		service.logger.WarnContext(context, "password_change_revoke_failed",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	service.logger.InfoContext(context, "user_password_changed",
		slog.Int64("user_id", user.ID),
		slog.Int64("actor_id", actor.ID),
	)

	return nil
}

// # Account Removal

/*
DeleteAccount performs an idempotent soft-deletion of a user account.

Description: Flags the account as deleted and immediately terminates all
active sessions to force a global sign-out.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (Must be the target user or an admin)
  - userID: int64

Returns:
  - error: Forbidden or execution failures
*/
func (service *Service) DeleteAccount(context context.Context, actor *sec.Principal, userID int64) error {

	if !actor.CanActOn(userID) {
		return apperr.Forbidden("You may only delete your own account")
	}

	// The lookup makes deletion of a nonexistent user a clean 404.
	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	if _, err := service.sessions.RevokeAll(context, userID); err != nil {
		service.logger.WarnContext(context, "account_delete_revoke_failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}

	service.logger.WarnContext(context, "user_account_deleted",
		slog.Int64("user_id", userID),
		slog.Int64("actor_id", actor.ID),
	)

	return nil
}
