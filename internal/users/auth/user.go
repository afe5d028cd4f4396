// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements registration, login, logout, and session-token
// management for Centra accounts.
//
// # Architecture
//
// The [User] entity in this package represents the "Truth" of the system.
// It has no dependencies on outer layers (like databases, APIs, or transport),
// which keeps the core logic highly testable and resilient to technology changes.
package auth

import (
	"time"

	"github.com/taibuivan/centra/internal/platform/sec"
)

// Gender codes stored on the user profile.
const (
	GenderUnknown int16 = 0
	GenderMale    int16 = 1
	GenderFemale  int16 = 2
)

// User represents a registered Centra account.
//
// # Rules
//   - Account is unique, normalized via [sec.NormalizeAccount] before storage.
//   - PasswordHash is generated via Bcrypt exclusively via the auth service.
//   - IsDeleted marks a soft-deleted row; the account name stays reserved and
//     can be reclaimed by re-registering.
type User struct {
	ID           int64        `json:"id"`
	Account      string       `json:"account"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Gender       int16        `json:"gender"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email,omitempty"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Profile      string       `json:"profile,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsDeleted    bool         `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Principal builds the session snapshot stored alongside the user's tokens.
//
// # Why a snapshot?
//
// Token resolution must not hit PostgreSQL on every request. The principal
// carries just enough identity for authorization decisions; profile edits
// become visible on the next login.
func (user *User) Principal() *sec.Principal {
	return &sec.Principal{
		ID:        user.ID,
		Account:   user.Account,
		Username:  user.Username,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		Email:     user.Email,
	}
}
