// SPDX-License-Identifier: MIT

// Package auth validates API tokens and identifies the acting principal.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// SessionCookie carries the token for browser clients.
const SessionCookie = "plantline_session"

// ExtractToken retrieves the API token from the request, in order:
// Authorization: Bearer, the session cookie, then the X-API-Token header.
// Query-parameter tokens are never accepted; they leak into proxy logs.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if t := r.Header.Get("X-API-Token"); t != "" {
		return t
	}
	return ""
}

// AuthorizeToken reports whether got matches expected, in constant time.
// An empty expected or got token never authorizes.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// AuthorizeRequest extracts a token from r and validates it.
func AuthorizeRequest(r *http.Request, expected string) bool {
	if r == nil {
		return false
	}
	return AuthorizeToken(ExtractToken(r), expected)
}
