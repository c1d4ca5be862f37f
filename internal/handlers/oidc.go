package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/middleware"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/gin-gonic/gin"
)

// JWKKeyID identifies the single shared HMAC key in the JWKS document.
const JWKKeyID = "shared-secret"

// OIDCHandler handles OIDC Discovery, JWKS and UserInfo endpoints.
type OIDCHandler struct {
	userService *services.UserService
	config      *config.Config
}

// NewOIDCHandler creates a new OIDCHandler.
func NewOIDCHandler(us *services.UserService, cfg *config.Config) *OIDCHandler {
	return &OIDCHandler{
		userService: us,
		config:      cfg,
	}
}

// discoveryMetadata holds the OIDC Provider Metadata returned by the discovery endpoint.
type discoveryMetadata struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
	CodeChallengeMethodsSupported    []string `json:"code_challenge_methods_supported"`
}

type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	K   string `json:"k"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
}

// Discovery handles GET /.well-known/openid-configuration.
func (h *OIDCHandler) Discovery(c *gin.Context) {
	base := strings.TrimRight(h.config.AuthServerURL, "/")
	if base == "" {
		base = strings.TrimRight(h.config.Issuer, "/")
	}

	c.JSON(http.StatusOK, discoveryMetadata{
		Issuer:                           strings.TrimRight(h.config.Issuer, "/"),
		AuthorizationEndpoint:            base + "/authorize",
		TokenEndpoint:                    base + "/token",
		UserinfoEndpoint:                 base + "/userinfo",
		JWKSURI:                          base + "/.well-known/jwks.json",
		ResponseTypesSupported:           []string{"code"},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"HS256"},
		ScopesSupported: []string{
			models.ScopeOpenID,
			models.ScopeProfile,
			models.ScopeEmail,
			models.ScopeReadUsers,
			models.ScopeReadProducts,
		},
		TokenEndpointAuthMethods: []string{"client_secret_basic", "client_secret_post"},
		GrantTypesSupported: []string{
			models.GrantTypeAuthorizationCode,
			models.GrantTypeRefreshToken,
			models.GrantTypeClientCredentials,
		},
		ClaimsSupported: []string{
			"sub",
			"iss",
			"aud",
			"exp",
			"iat",
			"auth_time",
			"name",
			"preferred_username",
			"email",
			"email_verified",
		},
		CodeChallengeMethodsSupported: []string{models.PKCEMethodS256, models.PKCEMethodPlain},
	})
}

// JWKS handles GET /.well-known/jwks.json. Tokens are HMAC-signed, so the
// only key published is the shared access-token secret.
func (h *OIDCHandler) JWKS(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keys": []jwk{{
			Kty: "oct",
			Use: "sig",
			K:   base64.RawURLEncoding.EncodeToString([]byte(h.config.AccessTokenSecret)),
			Kid: JWKKeyID,
			Alg: "HS256",
		}},
	})
}

// UserInfo handles GET /userinfo (OIDC Core 1.0 §5.3). It runs behind
// middleware.BearerAuth.
func (h *OIDCHandler) UserInfo(c *gin.Context) {
	claims, ok := middleware.GetTokenClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing_token", "Authorization header missing or malformed")
		return
	}

	scopes := middleware.GetTokenScopes(c)
	if !scopes.Has(models.ScopeOpenID) {
		respondError(c, http.StatusForbidden, errInsufficientScope, "openid scope required")
		return
	}

	subject, _ := claims["sub"].(string)
	user, err := h.userService.GetUserByID(subject)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "User not found")
		return
	}

	c.JSON(http.StatusOK, buildUserInfoClaims(user, scopes))
}

// buildUserInfoClaims constructs UserInfo response claims based on the granted scopes.
// sub is always included. profile and email scopes gate their respective claims.
func buildUserInfoClaims(user *models.User, scopes models.Scopes) map[string]any {
	claims := map[string]any{
		"sub": user.ID,
	}

	if scopes.Has(models.ScopeProfile) {
		claims["name"] = user.Name
		claims["preferred_username"] = user.Username
	}

	if scopes.Has(models.ScopeEmail) {
		claims["email"] = user.Email
		claims["email_verified"] = user.EmailVerified
	}

	return claims
}

// Health handles GET /health on both servers.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
