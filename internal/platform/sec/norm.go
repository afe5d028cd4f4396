// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeAccount canonicalizes an account identifier before it is
// used for lookups or rate-limit keys. Accounts are compared
// case-insensitively and in NFKC form so visually identical inputs
// map to the same stored user and the same lockout counter.
func NormalizeAccount(account string) string {
	trimmed := strings.TrimSpace(account)
	return strings.ToLower(norm.NFKC.String(trimmed))
}
