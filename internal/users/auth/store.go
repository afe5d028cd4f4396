// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for Centra is PostgreSQL (store_postgres.go).
type UserRepository interface {
	// FindByID returns the live (non-deleted) account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist or is soft-deleted.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByAccount returns the live account with the given normalized account name.
	//
	// Returns [apperr.NotFound] if no live user holds this account.
	FindByAccount(ctx context.Context, account string) (*User, error)

	// FindByAccountAny returns the account row regardless of its deletion flag.
	// Registration uses this to distinguish "name taken" from "name reclaimable".
	//
	// Returns [apperr.NotFound] only if the row has never existed.
	FindByAccountAny(ctx context.Context, account string) (*User, error)

	// Create persists a brand-new user account to the storage.
	//
	// Returns a wrapped error if the account unique constraint fails.
	Create(ctx context.Context, user *User) error

	// Restore reclaims a soft-deleted row: the deletion flag is cleared and the
	// profile fields and password hash are replaced with the new registration's.
	Restore(ctx context.Context, user *User) error
}
