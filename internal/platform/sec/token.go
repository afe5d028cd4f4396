// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenByteLength is the number of random bytes behind each session token.
// The hex encoding yields a 64-character opaque string.
const tokenByteLength = 32

/*
GenerateToken produces a new opaque session token.

The token carries no embedded claims; it is only meaningful as a key
into the server-side token store.

Returns:
  - string: hex-encoded random token
  - error: if the system entropy source fails
*/
func GenerateToken() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
