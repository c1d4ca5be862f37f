package token

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// claimType marks access and refresh tokens so one cannot stand in for the
// other when both kinds share a secret.
const claimType = "type"

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// Codec signs and verifies HS256 JWTs for every token kind.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	issuer          string
	defaultAudience string
	keys            map[Kind]signingKey
	now             func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec from the secrets, lifetimes and issuer in cfg.
func NewCodec(cfg *config.Config, opts ...Option) *Codec {
	c := &Codec{
		issuer:          cfg.Issuer,
		defaultAudience: cfg.AccessTokenAudience,
		keys: map[Kind]signingKey{
			KindAccess:  {secret: []byte(cfg.AccessTokenSecret), ttl: cfg.AccessTokenTTL},
			KindRefresh: {secret: []byte(cfg.RefreshTokenSecret), ttl: cfg.RefreshTokenTTL},
			KindID:      {secret: []byte(cfg.IDTokenSecret), ttl: cfg.IDTokenTTL},
		},
		now: time.Now,
	}
	if c.defaultAudience == "" {
		c.defaultAudience = config.DefaultAccessTokenAudience
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issuer returns the iss value embedded in every token.
func (c *Codec) Issuer() string {
	return c.issuer
}

// TTL returns the configured lifetime for kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.keys[kind].ttl
}

// Sign mints a token of the given kind. iss, iat and exp are always set.
// Access tokens get aud (caller value wins, else the default audience) and
// a fresh jti; refresh tokens get a fresh jti.
func (c *Codec) Sign(kind Kind, claims jwt.MapClaims) (*Result, error) {
	key, ok := c.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(key.secret) == 0 {
		return nil, fmt.Errorf("%w: no secret configured for %s tokens", ErrTokenGeneration, kind)
	}

	now := c.now()
	expiresAt := now.Add(key.ttl)

	out := maps.Clone(claims)
	if out == nil {
		out = jwt.MapClaims{}
	}
	out["iss"] = c.issuer
	out["iat"] = now.Unix()
	out["exp"] = expiresAt.Unix()

	switch kind {
	case KindAccess:
		if aud, _ := out["aud"].(string); aud == "" {
			out["aud"] = c.defaultAudience
		}
		out["jti"] = uuid.New().String()
		out[claimType] = string(KindAccess)
	case KindRefresh:
		out["jti"] = uuid.New().String()
		out[claimType] = string(KindRefresh)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, out)
	tokenString, err := token.SignedString(key.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: tokenString,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Claims:      out,
	}, nil
}

// Verify checks signature, issuer, expiry and kind-specific rules and
// returns the token claims.
//
// Access tokens must carry expectedAudience (the default audience when
// empty). ID tokens are audience-checked only when expectedAudience is set.
func (c *Codec) Verify(tokenString string, kind Kind, expectedAudience string) (jwt.MapClaims, error) {
	key, ok := c.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	switch kind {
	case KindAccess:
		if expectedAudience == "" {
			expectedAudience = c.defaultAudience
		}
		parserOpts = append(parserOpts, jwt.WithAudience(expectedAudience))
	case KindID:
		if expectedAudience != "" {
			parserOpts = append(parserOpts, jwt.WithAudience(expectedAudience))
		}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key.secret, nil
	}, parserOpts...)
	if err != nil {
		// Check if it's an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	typ, _ := claims[claimType].(string)
	switch kind {
	case KindRefresh:
		if typ != string(KindRefresh) {
			return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
		}
	case KindAccess:
		if typ == string(KindRefresh) {
			return nil, fmt.Errorf("%w: refresh token presented as access token", ErrInvalidToken)
		}
	}

	return claims, nil
}
