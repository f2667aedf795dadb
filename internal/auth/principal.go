// SPDX-License-Identifier: MIT

package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Principal is the authenticated caller: a stable identifier for the audit
// trail plus the workstation role the caller claims for this request.
type Principal struct {
	ID   string
	Role string
}

// NewPrincipal derives a stable principal ID from the token. The raw token
// is never stored; the prefix keeps hash IDs distinguishable from usernames.
func NewPrincipal(token, role string) *Principal {
	hash := sha256.Sum256([]byte(token))
	return &Principal{
		ID:   "t_" + hex.EncodeToString(hash[:])[:16],
		Role: role,
	}
}
