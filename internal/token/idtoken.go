package token

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenParams holds all data needed to generate an OIDC ID Token (OIDC Core 1.0 §2).
type IDTokenParams struct {
	Subject  string
	Audience string // client_id
	AuthTime time.Time

	// Profile claims
	Name              string
	PreferredUsername string

	// Email claims
	Email         string
	EmailVerified bool

	// AccessToken, when set, is hashed into at_hash.
	AccessToken string
}

// SignIDToken creates a signed HS256 ID Token for the given params.
// ID tokens are not stored; they are short-lived and non-revocable.
func (c *Codec) SignIDToken(params IDTokenParams) (*Result, error) {
	claims := jwt.MapClaims{
		"sub":       params.Subject,
		"aud":       params.Audience,
		"auth_time": params.AuthTime.Unix(),
	}

	if params.Name != "" {
		claims["name"] = params.Name
	}
	if params.PreferredUsername != "" {
		claims["preferred_username"] = params.PreferredUsername
	}
	if params.Email != "" {
		claims["email"] = params.Email
		claims["email_verified"] = params.EmailVerified
	}
	if params.AccessToken != "" {
		claims["at_hash"] = ComputeAtHash(params.AccessToken)
	}

	return c.Sign(KindID, claims)
}

// ComputeAtHash computes the at_hash claim value per OIDC Core 1.0 §3.3.2.11.
// at_hash = base64url( left-most 128 bits of SHA-256( ASCII(access_token) ) )
func ComputeAtHash(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
