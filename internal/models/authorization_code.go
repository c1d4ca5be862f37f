package models

import "time"

// PKCE challenge methods (RFC 7636)
const (
	PKCEMethodPlain = "plain"
	PKCEMethodS256  = "S256"
)

// AuthorizationCode is an OAuth 2.0 authorization code (RFC 6749).
// Codes are short-lived (default 5 minutes) and single-use: the registry
// removes the entry on the first redemption attempt.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	RedirectURI string
	Scopes      Scopes
	UserID      string

	// PKCE (RFC 7636)
	CodeChallenge       string // empty = PKCE not used
	CodeChallengeMethod string // "S256", "plain" or empty (treated as plain)

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the code is no longer redeemable at now.
func (a *AuthorizationCode) IsExpiredAt(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
