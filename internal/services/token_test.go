package services

import (
	"context"
	"testing"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/token"
	"github.com/notdulain/OAuth-Learning/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTestCode(t *testing.T, env *testEnv, scopes models.Scopes) string {
	t.Helper()
	code, err := env.authz.IssueCode(context.Background(), IssueCodeParams{
		ClientID:            LearningClientID,
		RedirectURI:         testRedirectURI,
		Scopes:              scopes,
		UserID:              "user-1",
		CodeChallenge:       util.S256Challenge(testVerifier),
		CodeChallengeMethod: models.PKCEMethodS256,
	})
	require.NoError(t, err)
	return code.Code
}

func TestIssueClientCredentialsToken(t *testing.T) {
	env := newTestEnv(t)
	client := env.learningClient(t)

	resp, err := env.tokens.IssueClientCredentialsToken(context.Background(), client, "read:users admin")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "read:users", resp.Scope)
	assert.Empty(t, resp.RefreshToken)
	assert.Empty(t, resp.IDToken)

	claims, err := env.codec.Verify(resp.AccessToken, token.KindAccess, "")
	require.NoError(t, err)
	assert.Equal(t, LearningClientID, claims["sub"])
	assert.Equal(t, LearningClientID, claims["client"])
	assert.Equal(t, "read:users", claims["scope"])
}

func TestIssueClientCredentialsToken_DefaultScopes(t *testing.T) {
	env := newTestEnv(t)
	client := env.learningClient(t)

	resp, err := env.tokens.IssueClientCredentialsToken(context.Background(), client, "")
	require.NoError(t, err)
	assert.Equal(t, client.Scopes.String(), resp.Scope)
}

func TestIssueClientCredentialsToken_GrantNotAllowed(t *testing.T) {
	env := newTestEnv(t, &models.Client{
		ClientID:     "code-only",
		ClientSecret: "secret",
		Grants:       []string{models.GrantTypeAuthorizationCode},
		Scopes:       models.Scopes{models.ScopeOpenID},
	})
	client, err := env.clients.GetClient("code-only")
	require.NoError(t, err)

	_, err = env.tokens.IssueClientCredentialsToken(context.Background(), client, "")
	assert.ErrorIs(t, err, ErrUnauthorizedClient)
}

func TestExchangeAuthorizationCode(t *testing.T) {
	env := newTestEnv(t)
	client := env.learningClient(t)
	code := issueTestCode(t, env, models.Scopes{"openid", "profile", "email", "read:users"})

	resp, err := env.tokens.ExchangeAuthorizationCode(context.Background(), client, code, testRedirectURI, testVerifier)
	require.NoError(t, err)
	assert.Equal(t, "openid profile email read:users", resp.Scope)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotEmpty(t, resp.IDToken)

	access, err := env.codec.Verify(resp.AccessToken, token.KindAccess, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", access["sub"])
	assert.Equal(t, "alice", access["username"])

	id, err := env.codec.Verify(resp.IDToken, token.KindID, LearningClientID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id["sub"])
	assert.Equal(t, "alice@example.com", id["email"])
	assert.Equal(t, token.ComputeAtHash(resp.AccessToken), id["at_hash"])

	refresh, err := env.codec.Verify(resp.RefreshToken, token.KindRefresh, "")
	require.NoError(t, err)
	assert.Equal(t, LearningClientID, refresh["client"])
}

func TestExchangeAuthorizationCode_NoOpenID(t *testing.T) {
	env := newTestEnv(t)
	client := env.learningClient(t)
	code := issueTestCode(t, env, models.Scopes{"read:products"})

	resp, err := env.tokens.ExchangeAuthorizationCode(context.Background(), client, code, testRedirectURI, testVerifier)
	require.NoError(t, err)
	assert.Empty(t, resp.IDToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestExchangeAuthorizationCode_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing code", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.tokens.ExchangeAuthorizationCode(ctx, env.learningClient(t), "", testRedirectURI, testVerifier)
		assert.ErrorIs(t, err, ErrCodeRequired)
	})

	t.Run("replay", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.learningClient(t)
		code := issueTestCode(t, env, models.Scopes{"openid"})

		_, err := env.tokens.ExchangeAuthorizationCode(ctx, client, code, testRedirectURI, testVerifier)
		require.NoError(t, err)

		_, err = env.tokens.ExchangeAuthorizationCode(ctx, client, code, testRedirectURI, testVerifier)
		assert.ErrorIs(t, err, ErrInvalidGrant)
		assert.ErrorIs(t, err, ErrAuthCodeNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		env := newTestEnv(t)
		code := issueTestCode(t, env, models.Scopes{"openid"})
		env.clock.Advance(6 * time.Minute)

		_, err := env.tokens.ExchangeAuthorizationCode(ctx, env.learningClient(t), code, testRedirectURI, testVerifier)
		assert.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("bad verifier", func(t *testing.T) {
		env := newTestEnv(t)
		code := issueTestCode(t, env, models.Scopes{"openid"})

		_, err := env.tokens.ExchangeAuthorizationCode(ctx, env.learningClient(t), code, testRedirectURI, "wrong")
		assert.ErrorIs(t, err, ErrInvalidGrant)
		assert.ErrorIs(t, err, ErrInvalidCodeVerifier)
	})

	t.Run("user removed", func(t *testing.T) {
		env := newTestEnv(t)
		code, err := env.authz.IssueCode(ctx, IssueCodeParams{
			ClientID:    LearningClientID,
			RedirectURI: testRedirectURI,
			UserID:      "user-gone",
		})
		require.NoError(t, err)

		_, err = env.tokens.ExchangeAuthorizationCode(ctx, env.learningClient(t), code.Code, testRedirectURI, "")
		assert.ErrorIs(t, err, ErrTokenUserNotFound)
	})
}

func TestRefreshAccessToken_Narrowing(t *testing.T) {
	env := newTestEnv(t)
	client := env.learningClient(t)
	ctx := context.Background()

	code := issueTestCode(t, env, models.Scopes{"read:users", "openid"})
	initial, err := env.tokens.ExchangeAuthorizationCode(ctx, client, code, testRedirectURI, testVerifier)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	resp, err := env.tokens.RefreshAccessToken(ctx, client, initial.RefreshToken, "read:users admin")
	require.NoError(t, err)
	assert.Equal(t, "read:users", resp.Scope)
	assert.Empty(t, resp.IDToken)
	assert.NotEqual(t, initial.RefreshToken, resp.RefreshToken)

	// the rotated token still carries the original grant
	rotated, err := env.codec.Verify(resp.RefreshToken, token.KindRefresh, "")
	require.NoError(t, err)
	assert.Equal(t, "read:users openid", rotated["scope"])

	again, err := env.tokens.RefreshAccessToken(ctx, client, resp.RefreshToken, "")
	require.NoError(t, err)
	assert.Equal(t, "read:users openid", again.Scope)
	assert.NotEmpty(t, again.IDToken)
}

func TestRefreshAccessToken_Errors(t *testing.T) {
	ctx := context.Background()
	other := &models.Client{
		ClientID:     "other-client",
		ClientSecret: "other-secret",
		Grants:       []string{models.GrantTypeRefreshToken},
		Scopes:       models.Scopes{models.ScopeOpenID},
	}

	env := newTestEnv(t, other)
	client := env.learningClient(t)
	code := issueTestCode(t, env, models.Scopes{"openid"})
	initial, err := env.tokens.ExchangeAuthorizationCode(ctx, client, code, testRedirectURI, testVerifier)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		_, err := env.tokens.RefreshAccessToken(ctx, client, "", "")
		assert.ErrorIs(t, err, ErrRefreshTokenRequired)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.tokens.RefreshAccessToken(ctx, client, "not-a-jwt", "")
		assert.ErrorIs(t, err, ErrInvalidGrant)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token presented", func(t *testing.T) {
		_, err := env.tokens.RefreshAccessToken(ctx, client, initial.AccessToken, "")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("other client", func(t *testing.T) {
		_, err := env.tokens.RefreshAccessToken(ctx, other, initial.RefreshToken, "")
		assert.ErrorIs(t, err, ErrInvalidGrant)
		assert.ErrorIs(t, err, ErrRefreshTokenClientMismatch)
	})

	t.Run("expired", func(t *testing.T) {
		env.clock.Advance(8 * 24 * time.Hour)
		_, err := env.tokens.RefreshAccessToken(ctx, client, initial.RefreshToken, "")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
