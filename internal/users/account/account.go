// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles user profile management, listing, and administration.

It provides functionalities for users to view and update their identity data,
change their password, and for administrators to browse, search, reset, and
remove accounts.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Ownership rules (admin-or-self) are enforced in the service layer.
*/
package account

import (
	"context"

	"github.com/taibuivan/centra/internal/users/auth"
	"github.com/taibuivan/centra/pkg/pagination"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a live user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id int64) (*auth.User, error)

	/*
		List returns every live account ordered by ID.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*auth.User: All live accounts
		  - error: Storage failures
	*/
	List(context context.Context) ([]*auth.User, error)

	/*
		Page returns one page of live accounts plus the total live count.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*auth.User: The requested page
		  - int: Total number of live accounts
		  - error: Storage failures
	*/
	Page(context context.Context, params pagination.Params) ([]*auth.User, int, error)

	/*
		Search returns live accounts whose username contains the query,
		case-insensitively, plus the total match count.

		Parameters:
		  - context: context.Context
		  - query: string (Username fragment)
		  - params: pagination.Params

		Returns:
		  - []*auth.User: The matching page
		  - int: Total number of matches
		  - error: Storage failures
	*/
	Search(context context.Context, query string, params pagination.Params) ([]*auth.User, int, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		UpdatePassword replaces only the user's password hash.
		This is separate from Update to prevent accidental overwrites
		during unrelated profile updates.

		Parameters:
		  - context: context.Context
		  - userID: int64
		  - newHash: string

		Returns:
		  - error: Execution failures
	*/
	UpdatePassword(context context.Context, userID int64, newHash string) error

	/*
		SoftDelete flags an account as logically deleted. The account name
		stays reserved and can be reclaimed by re-registering.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id int64) error
}

// SessionRevoker terminates login sessions after security-relevant changes.
//
// Implemented by [auth.TokenStore]; declared here so the service can be
// tested without Redis wiring.
type SessionRevoker interface {
	// RevokeAll deletes every live token belonging to the user and
	// returns how many were removed.
	RevokeAll(context context.Context, userID int64) (int, error)
}
