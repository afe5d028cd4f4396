// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides security primitives shared across the platform:
// the principal snapshot, role hierarchy, password hashing, opaque token
// generation, and account identifier normalization.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It has
// no dependency on storage or transport, so both middleware and domain
// services can import it without cycles.
package sec

// Principal is the identity snapshot carried by a valid session token.
//
// It is captured at issue time and stored verbatim in Redis; each request
// resolves its token back to this snapshot. The password hash is never part
// of a principal.
type Principal struct {
	ID        int64    `json:"id"`
	Account   string   `json:"account"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Email     string   `json:"email,omitempty"`
}

// IsAdmin reports whether the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role.AtLeast(RoleAdmin)
}

// CanActOn implements the ownership policy: an admin may act on any user,
// a regular user only on their own account.
func (p *Principal) CanActOn(targetUserID int64) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin() || p.ID == targetUserID
}
