// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the account storage contract.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/dberr"
	"github.com/taibuivan/centra/internal/users/auth"
	"github.com/taibuivan/centra/pkg/pagination"
)

// userColumns is the canonical column list for scanning a user row.
const userColumns = `id, account, username, passwordhash, gender, phone, email, avatarurl, profile, role, isdeleted, createdat, updatedat`

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// scanUser reads one user row into an [auth.User] entity.
func scanUser(row pgx.Row) (*auth.User, error) {
	user := &auth.User{}
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

// collectUsers drains a result set into a slice of entities.
func collectUsers(rows pgx.Rows) ([]*auth.User, error) {
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindByID retrieves a live user record by their unique ID.
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND isdeleted = FALSE`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "postgres_account_repo_find_by_id_failed")
	}

	return user, nil
}

// List returns every live account ordered by ID.
func (repository *PostgresAccountRepository) List(ctx context.Context) ([]*auth.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE isdeleted = FALSE
		ORDER BY id`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_list_failed")
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_list_scan_failed")
	}
	return users, nil
}

// Page returns one page of live accounts plus the total live count.
func (repository *PostgresAccountRepository) Page(ctx context.Context, params pagination.Params) ([]*auth.User, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users.account WHERE isdeleted = FALSE`
	const pageQuery = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE isdeleted = FALSE
		ORDER BY id
		LIMIT $1 OFFSET $2`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_page_count_failed")
	}

	rows, err := repository.pool.Query(ctx, pageQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_page_failed")
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_page_scan_failed")
	}
	return users, total, nil
}

// Search returns live accounts whose username contains the query fragment.
func (repository *PostgresAccountRepository) Search(ctx context.Context, query string, params pagination.Params) ([]*auth.User, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM users.account
		WHERE isdeleted = FALSE AND username ILIKE '%' || $1 || '%'`
	const pageQuery = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE isdeleted = FALSE AND username ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, query).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_search_count_failed")
	}

	rows, err := repository.pool.Query(ctx, pageQuery, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_search_failed")
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_account_repo_search_scan_failed")
	}
	return users, total, nil
}

// Update persists changes to a user's mutable profile fields.
func (repository *PostgresAccountRepository) Update(ctx context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET username = $2, gender = $3, phone = $4, email = $5, avatarurl = $6, profile = $7, updatedat = $8
		WHERE id = $1 AND isdeleted = FALSE`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Gender,
		user.Phone,
		user.Email,
		user.AvatarURL,
		user.Profile,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_account_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresAccountRepository) UpdatePassword(ctx context.Context, userID int64, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND isdeleted = FALSE`

	tag, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return dberr.Wrap(err, "postgres_account_repo_update_password_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// SoftDelete marks a user account as deleted using their ID.
func (repository *PostgresAccountRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `
		UPDATE users.account
		SET isdeleted = TRUE, updatedat = $2
		WHERE id = $1 AND isdeleted = FALSE`

	_, err := repository.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return dberr.Wrap(err, "postgres_account_repo_soft_delete_failed")
	}
	return nil
}
