// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			// A duplicate INSERT that slips past an existence pre-check
			// must surface as a client conflict, not a 500.
			name:       "unique_violation_is_conflict",
			err:        &pgconn.PgError{Code: "23505", ConstraintName: "account_account_key"},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign_key_violation_is_unprocessable",
			err:        &pgconn.PgError{Code: "23503"},
			wantCode:   "UNPROCESSABLE",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no_rows_is_not_found",
			err:        pgx.ErrNoRows,
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown_error_is_internal",
			err:        errors.New("connection reset"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "repository_action")

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "repository_action"))
}

func TestWrap_WrappedPgError(t *testing.T) {
	// Classification must survive an intermediate fmt.Errorf wrap.
	inner := &pgconn.PgError{Code: "23505"}
	wrapped := dberr.Wrap(errors.Join(errors.New("insert user"), inner), "repository_action")

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}
