package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// Kind selects the secret, lifetime and claim rules used for a token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindID      Kind = "id"
)

// Result is the outcome of a Sign call.
type Result struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
	Claims      jwt.MapClaims
}
