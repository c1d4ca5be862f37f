package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"
	"github.com/notdulain/OAuth-Learning/internal/token"
	"github.com/notdulain/OAuth-Learning/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClientAuth(form url.Values) url.Values {
	form.Set("client_id", services.LearningClientID)
	form.Set("client_secret", testClientSecret)
	return form
}

func (s *testServer) issueCode(t *testing.T, scopes models.Scopes) string {
	t.Helper()
	code, err := s.authz.IssueCode(t.Context(), services.IssueCodeParams{
		ClientID:            services.LearningClientID,
		RedirectURI:         testRedirectURI,
		Scopes:              scopes,
		UserID:              "user-1",
		CodeChallenge:       util.S256Challenge(testVerifier),
		CodeChallengeMethod: models.PKCEMethodS256,
	})
	require.NoError(t, err)
	return code.Code
}

func decodeError(t *testing.T, body []byte) (string, string) {
	t.Helper()
	var resp struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error, resp.Description
}

func TestToken_GrantTypeValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.post("/token", withClientAuth(url.Values{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, desc := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "invalid_request", code)
	assert.Equal(t, "grant_type is required", desc)

	w = s.post("/token", withClientAuth(url.Values{"grant_type": {"password"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, desc = decodeError(t, w.Body.Bytes())
	assert.Equal(t, "unsupported_grant_type", code)
	assert.Equal(t, "password is not supported", desc)
}

func TestToken_ClientAuthentication(t *testing.T) {
	s := newTestServer(t)

	w := s.post("/token", url.Values{"grant_type": {"client_credentials"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	code, desc := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "invalid_client", code)
	assert.Equal(t, "Client credentials missing", desc)

	w = s.post("/token", url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {services.LearningClientID},
		"client_secret": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="oauth-learning"`, w.Header().Get("WWW-Authenticate"))
}

func TestToken_AuthorizationCode(t *testing.T) {
	s := newTestServer(t)
	code := s.issueCode(t, models.Scopes{"openid", "email"})

	w := s.post("/token", withClientAuth(url.Values{
		"grant_type":    {models.GrantTypeAuthorizationCode},
		"code":          {code},
		"redirect_uri":  {testRedirectURI},
		"code_verifier": {testVerifier},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "openid email", resp.Scope)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := s.codec.Verify(resp.IDToken, token.KindID, services.LearningClientID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims["email"])
}

func TestToken_AuthorizationCodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		form    func(code string) url.Values
		advance bool
		errCode string
		desc    string
	}{
		{
			name: "missing code",
			form: func(string) url.Values {
				return url.Values{"grant_type": {models.GrantTypeAuthorizationCode}}
			},
			errCode: "invalid_request",
			desc:    "code is required",
		},
		{
			name: "expired code",
			form: func(code string) url.Values {
				return url.Values{
					"grant_type":    {models.GrantTypeAuthorizationCode},
					"code":          {code},
					"redirect_uri":  {testRedirectURI},
					"code_verifier": {testVerifier},
				}
			},
			advance: true,
			errCode: "invalid_grant",
			desc:    "Authorization code is invalid or expired",
		},
		{
			name: "redirect mismatch",
			form: func(code string) url.Values {
				return url.Values{
					"grant_type":    {models.GrantTypeAuthorizationCode},
					"code":          {code},
					"redirect_uri":  {"http://localhost:3000/other"},
					"code_verifier": {testVerifier},
				}
			},
			errCode: "invalid_grant",
			desc:    "redirect_uri mismatch",
		},
		{
			name: "wrong verifier",
			form: func(code string) url.Values {
				return url.Values{
					"grant_type":    {models.GrantTypeAuthorizationCode},
					"code":          {code},
					"redirect_uri":  {testRedirectURI},
					"code_verifier": {"not-the-verifier-not-the-verifier-not-the-ve"},
				}
			},
			errCode: "invalid_grant",
			desc:    "PKCE verification failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			code := s.issueCode(t, models.Scopes{"openid"})
			if tt.advance {
				s.clock.Advance(s.cfg.AuthCodeTTL + 1)
			}

			w := s.post("/token", withClientAuth(tt.form(code)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			errCode, desc := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.errCode, errCode)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestToken_UnauthorizedClient(t *testing.T) {
	s := newTestServer(t, &models.Client{
		ClientID:     "code-only",
		ClientSecret: "code-only-secret",
		RedirectURIs: []string{testRedirectURI},
		Grants:       []string{models.GrantTypeAuthorizationCode},
		Scopes:       models.Scopes{"read:users"},
	})

	w := s.post("/token", url.Values{
		"grant_type":    {models.GrantTypeClientCredentials},
		"client_id":     {"code-only"},
		"client_secret": {"code-only-secret"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, desc := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "unauthorized_client", code)
	assert.Equal(t, "Client is not allowed to use grant_type client_credentials", desc)
}

func TestToken_RefreshErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.post("/token", withClientAuth(url.Values{"grant_type": {models.GrantTypeRefreshToken}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, desc := decodeError(t, w.Body.Bytes())
	assert.Equal(t, "invalid_request", code)
	assert.Equal(t, "refresh_token is required", desc)

	w = s.post("/token", withClientAuth(url.Values{
		"grant_type":    {models.GrantTypeRefreshToken},
		"refresh_token": {"garbage"},
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, desc = decodeError(t, w.Body.Bytes())
	assert.Equal(t, "invalid_grant", code)
	assert.Equal(t, "refresh_token is invalid or expired", desc)
}
