package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidGrant wraps every failure that maps to the invalid_grant error code
	ErrInvalidGrant = errors.New("invalid_grant")

	// ErrUnauthorizedClient means the client may not use the requested grant type
	ErrUnauthorizedClient = errors.New("unauthorized_client")

	ErrInvalidRefreshToken        = errors.New("refresh_token is invalid or expired")
	ErrRefreshTokenClientMismatch = errors.New("refresh_token was not issued to this client")
	ErrTokenUserNotFound          = errors.New("user linked to the grant no longer exists")
	ErrCodeRequired               = errors.New("code is required")
	ErrRefreshTokenRequired       = errors.New("refresh_token is required")
)

// TokenResponse is the token endpoint success body (RFC 6749 §5.1).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// TokenService implements the token endpoint grants on top of the codec.
// It never stores tokens: refresh rotation is stateless.
type TokenService struct {
	codec         *token.Codec
	clients       *ClientService
	users         *UserService
	authorization *AuthorizationService
	*options
}

func NewTokenService(
	codec *token.Codec,
	clients *ClientService,
	users *UserService,
	authorization *AuthorizationService,
	opts ...Option,
) *TokenService {
	return &TokenService{
		codec:         codec,
		clients:       clients,
		users:         users,
		authorization: authorization,
		options:       newOptions(opts),
	}
}

// IssueClientCredentialsToken issues an access token whose subject is the
// client itself (RFC 6749 §4.4). No refresh or ID token is returned.
func (s *TokenService) IssueClientCredentialsToken(
	ctx context.Context,
	client *models.Client,
	requestedScope string,
) (*TokenResponse, error) {
	if !s.clients.AllowsGrant(client, models.GrantTypeClientCredentials) {
		return nil, ErrUnauthorizedClient
	}

	scopes := s.clients.FilterScopes(client, models.ParseScopes(requestedScope))

	claims := jwt.MapClaims{
		"sub":    client.ClientID,
		"client": client.ClientID,
		"grant":  models.GrantTypeClientCredentials,
	}
	if len(scopes) > 0 {
		claims["scope"] = scopes.String()
	}
	if client.Audience != "" {
		claims["aud"] = client.Audience
	}

	access, err := s.sign(token.KindAccess, models.GrantTypeClientCredentials, claims)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("token issued",
		"grant_type", models.GrantTypeClientCredentials,
		"client_id", client.ClientID,
		"scope", scopes.String(),
	)

	return &TokenResponse{
		AccessToken: access.TokenString,
		TokenType:   token.TokenTypeBearer,
		ExpiresIn:   s.expiresIn(),
		Scope:       scopes.String(),
	}, nil
}

// ExchangeAuthorizationCode redeems a code for access, refresh and, when
// openid was granted, ID tokens.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	client *models.Client,
	code, redirectURI, codeVerifier string,
) (*TokenResponse, error) {
	if !s.clients.AllowsGrant(client, models.GrantTypeAuthorizationCode) {
		return nil, ErrUnauthorizedClient
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	record, err := s.authorization.RedeemCode(ctx, code, client.ClientID, redirectURI, codeVerifier)
	if err != nil {
		s.logger.Warnw("authorization code rejected",
			"client_id", client.ClientID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, err)
	}

	user, err := s.users.GetUserByID(record.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, ErrTokenUserNotFound)
	}

	resp, err := s.issueUserTokens(
		client,
		user,
		record.Scopes,
		record.Scopes,
		models.GrantTypeAuthorizationCode,
		record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("token issued",
		"grant_type", models.GrantTypeAuthorizationCode,
		"client_id", client.ClientID,
		"user_id", user.ID,
		"scope", resp.Scope,
	)
	return resp, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token and a
// rotated refresh token. Requested scopes are narrowed to those of the
// original grant; they are never widened.
func (s *TokenService) RefreshAccessToken(
	ctx context.Context,
	client *models.Client,
	refreshToken, requestedScope string,
) (*TokenResponse, error) {
	if !s.clients.AllowsGrant(client, models.GrantTypeRefreshToken) {
		return nil, ErrUnauthorizedClient
	}
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	claims, err := s.codec.Verify(refreshToken, token.KindRefresh, "")
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, ErrInvalidRefreshToken)
	}

	if issuedTo, _ := claims["client"].(string); issuedTo != "" && issuedTo != client.ClientID {
		s.metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, ErrRefreshTokenClientMismatch)
	}

	subject, _ := claims["sub"].(string)
	user, err := s.users.GetUserByID(subject)
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrant, ErrTokenUserNotFound)
	}

	original := scopesFromClaims(claims)
	if len(original) == 0 {
		original = client.Scopes.Clone()
	}
	scopes := original
	if requested := models.ParseScopes(requestedScope); len(requested) > 0 {
		scopes = requested.Intersect(original)
	}

	authTime := s.now()
	if at, ok := claims["auth_time"].(float64); ok && at > 0 {
		authTime = time.Unix(int64(at), 0)
	}

	// RFC 6749 §6: the rotated refresh token keeps the original scope.
	resp, err := s.issueUserTokens(
		client,
		user,
		scopes,
		original,
		models.GrantTypeRefreshToken,
		authTime,
	)
	if err != nil {
		s.metrics.RecordTokenRefresh(false)
		return nil, err
	}
	s.metrics.RecordTokenRefresh(true)

	s.logger.Infow("token refreshed",
		"client_id", client.ClientID,
		"user_id", user.ID,
		"scope", resp.Scope,
	)
	return resp, nil
}

// issueUserTokens mints the access, refresh and optional ID token for a
// user-bound grant. scopes apply to the access and ID token, grantScopes
// are carried by the refresh token.
func (s *TokenService) issueUserTokens(
	client *models.Client,
	user *models.User,
	scopes models.Scopes,
	grantScopes models.Scopes,
	grantType string,
	authTime time.Time,
) (*TokenResponse, error) {
	accessClaims := jwt.MapClaims{
		"sub":      user.ID,
		"client":   client.ClientID,
		"grant":    grantType,
		"username": user.Username,
		"name":     user.Name,
		"email":    user.Email,
	}
	if len(scopes) > 0 {
		accessClaims["scope"] = scopes.String()
	}
	if client.Audience != "" {
		accessClaims["aud"] = client.Audience
	}

	access, err := s.sign(token.KindAccess, grantType, accessClaims)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(token.KindRefresh, grantType, jwt.MapClaims{
		"sub":       user.ID,
		"client":    client.ClientID,
		"scope":     grantScopes.String(),
		"grant":     grantType,
		"auth_time": authTime.Unix(),
	})
	if err != nil {
		return nil, err
	}

	resp := &TokenResponse{
		AccessToken:  access.TokenString,
		TokenType:    token.TokenTypeBearer,
		ExpiresIn:    s.expiresIn(),
		Scope:        scopes.String(),
		RefreshToken: refresh.TokenString,
	}

	// OIDC Core 1.0 §3.1.3.3: ID token only when openid was granted
	if scopes.Has(models.ScopeOpenID) {
		start := s.now()
		idToken, err := s.codec.SignIDToken(token.IDTokenParams{
			Subject:           user.ID,
			Audience:          client.ClientID,
			AuthTime:          authTime,
			Name:              user.Name,
			PreferredUsername: user.Username,
			Email:             user.Email,
			EmailVerified:     user.EmailVerified,
			AccessToken:       access.TokenString,
		})
		if err != nil {
			return nil, fmt.Errorf("id token generation failed: %w", err)
		}
		s.metrics.RecordTokenIssued("id", grantType, s.now().Sub(start))
		resp.IDToken = idToken.TokenString
	}

	return resp, nil
}

func (s *TokenService) sign(kind token.Kind, grantType string, claims jwt.MapClaims) (*token.Result, error) {
	start := s.now()
	result, err := s.codec.Sign(kind, claims)
	if err != nil {
		s.logger.Errorw("token generation failed", "kind", kind, "grant_type", grantType, "error", err)
		return nil, fmt.Errorf("token generation failed: %w", err)
	}
	s.metrics.RecordTokenIssued(string(kind), grantType, s.now().Sub(start))
	return result, nil
}

// expiresIn is the configured access-token lifetime in seconds.
func (s *TokenService) expiresIn() int64 {
	return int64(s.codec.TTL(token.KindAccess) / time.Second)
}

func scopesFromClaims(claims jwt.MapClaims) models.Scopes {
	raw, _ := claims["scope"].(string)
	return models.ParseScopes(raw)
}
