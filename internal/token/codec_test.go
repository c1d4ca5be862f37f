package token

import (
	"testing"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Issuer:              "http://localhost:4000",
		AccessTokenSecret:   "access-secret-for-tests",
		RefreshTokenSecret:  "refresh-secret-for-tests",
		IDTokenSecret:       "id-secret-for-tests",
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     7 * 24 * time.Hour,
		IDTokenTTL:          15 * time.Minute,
		AccessTokenAudience: "resource-server",
	}
}

func TestCodec_SignAccessToken(t *testing.T) {
	codec := NewCodec(testConfig())

	result, err := codec.Sign(KindAccess, jwt.MapClaims{
		"sub":   "user-1",
		"scope": "read:users openid",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TokenString)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), result.ExpiresAt, 5*time.Second)
	assert.Equal(t, "http://localhost:4000", result.Claims["iss"])
	assert.Equal(t, "resource-server", result.Claims["aud"])
	assert.NotEmpty(t, result.Claims["jti"])
	assert.Contains(t, result.Claims, "iat")
	assert.Contains(t, result.Claims, "exp")
}

func TestCodec_SignDoesNotMutateInput(t *testing.T) {
	codec := NewCodec(testConfig())
	in := jwt.MapClaims{"sub": "user-1"}

	_, err := codec.Sign(KindAccess, in)
	require.NoError(t, err)

	assert.Len(t, in, 1)
}

func TestCodec_SignUniqueJTI(t *testing.T) {
	codec := NewCodec(testConfig())

	a, err := codec.Sign(KindRefresh, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)
	b, err := codec.Sign(KindRefresh, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Claims["jti"], b.Claims["jti"])
	assert.NotEqual(t, a.TokenString, b.TokenString)
}

func TestCodec_VerifyAccessToken(t *testing.T) {
	codec := NewCodec(testConfig())

	signed, err := codec.Sign(KindAccess, jwt.MapClaims{"sub": "user-1", "scope": "read:users"})
	require.NoError(t, err)

	claims, err := codec.Verify(signed.TokenString, KindAccess, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "read:users", claims["scope"])
}

func TestCodec_VerifyAccessTokenAudienceOverride(t *testing.T) {
	codec := NewCodec(testConfig())

	signed, err := codec.Sign(KindAccess, jwt.MapClaims{"sub": "svc", "aud": "billing-api"})
	require.NoError(t, err)

	_, err = codec.Verify(signed.TokenString, KindAccess, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	claims, err := codec.Verify(signed.TokenString, KindAccess, "billing-api")
	require.NoError(t, err)
	assert.Equal(t, "svc", claims["sub"])
}

func TestCodec_VerifyExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	codec := NewCodec(testConfig(), WithClock(clock))

	signed, err := codec.Sign(KindAccess, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	later := NewCodec(testConfig(), WithClock(func() time.Time {
		return now.Add(16 * time.Minute)
	}))
	_, err = later.Verify(signed.TokenString, KindAccess, "")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCodec_VerifyRejects(t *testing.T) {
	cfg := testConfig()
	codec := NewCodec(cfg)

	access, err := codec.Sign(KindAccess, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)
	refresh, err := codec.Sign(KindRefresh, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	otherIssuerCfg := testConfig()
	otherIssuerCfg.Issuer = "http://evil.example"
	foreign, err := NewCodec(otherIssuerCfg).Sign(KindAccess, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		kind  Kind
	}{
		{"garbage", "not-a-jwt", KindAccess},
		{"access verified with refresh secret", access.TokenString, KindRefresh},
		{"refresh verified as access", refresh.TokenString, KindAccess},
		{"wrong issuer", foreign.TokenString, KindAccess},
		{"tampered", access.TokenString + "x", KindAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token, tt.kind, "")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestCodec_VerifyRejectsNonHMAC(t *testing.T) {
	codec := NewCodec(testConfig())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"iss": "http://localhost:4000",
		"aud": "resource-server",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(tokenString, KindAccess, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_SharedSecretStillSeparatesKinds(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenSecret = "shared"
	cfg.RefreshTokenSecret = "shared"
	codec := NewCodec(cfg)

	access, err := codec.Sign(KindAccess, jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	_, err = codec.Verify(access.TokenString, KindRefresh, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_SignUnknownKind(t *testing.T) {
	codec := NewCodec(testConfig())

	_, err := codec.Sign(Kind("bogus"), jwt.MapClaims{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCodec_SignIDToken(t *testing.T) {
	codec := NewCodec(testConfig())
	authTime := time.Now().Add(-time.Minute).Truncate(time.Second)

	result, err := codec.SignIDToken(IDTokenParams{
		Subject:           "user-1",
		Audience:          "learning-client",
		AuthTime:          authTime,
		Name:              "Alice Johnson",
		PreferredUsername: "alice",
		Email:             "alice@example.com",
		EmailVerified:     true,
		AccessToken:       "some-access-token",
	})
	require.NoError(t, err)

	claims, err := codec.Verify(result.TokenString, KindID, "learning-client")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "Alice Johnson", claims["name"])
	assert.Equal(t, "alice", claims["preferred_username"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.Equal(t, true, claims["email_verified"])
	assert.Equal(t, float64(authTime.Unix()), claims["auth_time"])
	assert.Equal(t, ComputeAtHash("some-access-token"), claims["at_hash"])

	_, err = codec.Verify(result.TokenString, KindID, "other-client")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestComputeAtHash(t *testing.T) {
	// Deterministic and unpadded base64url of 16 bytes.
	h := ComputeAtHash("token")
	assert.Equal(t, h, ComputeAtHash("token"))
	assert.Len(t, h, 22)
	assert.NotContains(t, h, "=")
}
