// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the auth storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/dberr"
)

// userColumns is the canonical column list for scanning a [User].
const userColumns = `id, account, username, passwordhash, gender, phone, email, avatarurl, profile, role, isdeleted, createdat, updatedat`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser reads one user row into a [User] entity.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Account,
		&user.Username,
		&user.PasswordHash,
		&user.Gender,
		&user.Phone,
		&user.Email,
		&user.AvatarURL,
		&user.Profile,
		&user.Role,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the users.account table.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - user: The user entity to persist. The generated ID is written back.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			account, username, passwordhash, gender, phone, email, avatarurl, profile, role, isdeleted, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
		RETURNING id`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	err := repository.pool.QueryRow(ctx, query,
		user.Account,
		user.Username,
		user.PasswordHash,
		user.Gender,
		user.Phone,
		user.Email,
		user.AvatarURL,
		user.Profile,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		// A unique violation here means the account was registered
		// concurrently after the pre-check; Wrap turns it into a Conflict.
		return dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return nil
}

// FindByID retrieves a live user record by their unique ID.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no live account exists.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND isdeleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_id_failed")
	}

	return user, nil
}

// FindByAccount retrieves a live user record by their unique account name.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no live account exists.
func (repository *PostgresUserRepository) FindByAccount(ctx context.Context, account string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE account = $1 AND isdeleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, account))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_account_failed")
	}

	return user, nil
}

// FindByAccountAny retrieves the account row regardless of its deletion flag.
//
// Registration uses this to decide between "account taken" (live row) and
// "account reclaimable" (soft-deleted row).
func (repository *PostgresUserRepository) FindByAccountAny(ctx context.Context, account string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE account = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, account))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_user_repo_find_by_account_any_failed")
	}

	return user, nil
}

// Restore reclaims a soft-deleted account row for a fresh registration.
//
// The row keeps its ID but every profile field and the password hash are
// replaced with the new registration's values.
func (repository *PostgresUserRepository) Restore(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET username = $2, passwordhash = $3, gender = $4, phone = $5, email = $6,
		    avatarurl = $7, profile = $8, role = $9, isdeleted = FALSE, updatedat = $10
		WHERE id = $1 AND isdeleted = TRUE`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Gender,
		user.Phone,
		user.Email,
		user.AvatarURL,
		user.Profile,
		user.Role,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_restore_failed")
	}
	if tag.RowsAffected() == 0 {
		// The row was restored concurrently; the account is taken after all.
		return apperr.Conflict("Account already exists")
	}

	return nil
}
