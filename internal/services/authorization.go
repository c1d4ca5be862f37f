package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/util"
)

// Authorization Code Flow errors
var (
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrInvalidRedirectURI      = errors.New("invalid redirect_uri")
	ErrAuthCodeNotFound        = errors.New("authorization code not found")
	ErrAuthCodeClientMismatch  = errors.New("authorization code does not belong to this client")
	ErrAuthCodeRedirectURI     = errors.New("redirect_uri mismatch")
	ErrInvalidCodeVerifier     = errors.New("invalid code_verifier")
)

// AuthorizationRequest holds validated parameters for an authorization request
type AuthorizationRequest struct {
	Client      *models.Client
	RedirectURI string
	Scopes      models.Scopes
}

// IssueCodeParams describes the grant an authorization code stands for.
type IssueCodeParams struct {
	ClientID            string
	RedirectURI         string
	Scopes              models.Scopes
	UserID              string
	CodeChallenge       string
	CodeChallengeMethod string
	TTL                 time.Duration // zero means the service default
}

// AuthorizationService manages the OAuth 2.0 Authorization Code Flow (RFC 6749):
// request validation and the single-use code registry.
type AuthorizationService struct {
	clients *ClientService
	store   core.Store[*models.AuthorizationCode]
	codeTTL time.Duration
	*options
}

func NewAuthorizationService(
	clients *ClientService,
	store core.Store[*models.AuthorizationCode],
	codeTTL time.Duration,
	opts ...Option,
) *AuthorizationService {
	return &AuthorizationService{
		clients: clients,
		store:   store,
		codeTTL: codeTTL,
		options: newOptions(opts),
	}
}

// ValidateAuthorizationRequest validates the parameters of an incoming
// authorization request in order: response_type, client, redirect_uri.
// Requested scopes are filtered against the client allow-list.
func (s *AuthorizationService) ValidateAuthorizationRequest(
	clientID, redirectURI, responseType, scope string,
) (*AuthorizationRequest, error) {
	// 1. response_type must be "code"
	if responseType != "code" {
		return nil, ErrUnsupportedResponseType
	}

	// 2. Client must exist
	client, err := s.clients.GetClient(clientID)
	if err != nil {
		return nil, err
	}

	// 3. redirect_uri must exactly match one of the registered URIs
	if !s.clients.IsRedirectURIAllowed(client, redirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	// 4. Scopes: drop what the client may not request, default to all
	return &AuthorizationRequest{
		Client:      client,
		RedirectURI: redirectURI,
		Scopes:      s.clients.FilterScopes(client, models.ParseScopes(scope)),
	}, nil
}

// IssueCode generates a one-time authorization code and stores it.
func (s *AuthorizationService) IssueCode(
	ctx context.Context,
	params IssueCodeParams,
) (*models.AuthorizationCode, error) {
	// 32 cryptographically random bytes (256-bit entropy), 64-char hex
	code, err := util.RandomHex(32)
	if err != nil {
		s.metrics.RecordAuthorizationCodeIssued(false)
		return nil, fmt.Errorf("failed to generate authorization code: %w", err)
	}

	ttl := params.TTL
	if ttl <= 0 {
		ttl = s.codeTTL
	}

	now := s.now()
	record := &models.AuthorizationCode{
		Code:                code,
		ClientID:            params.ClientID,
		RedirectURI:         params.RedirectURI,
		Scopes:              params.Scopes.Clone(),
		UserID:              params.UserID,
		CodeChallenge:       params.CodeChallenge,
		CodeChallengeMethod: params.CodeChallengeMethod,
		CreatedAt:           now,
		ExpiresAt:           now.Add(ttl),
	}

	if err := s.store.Set(ctx, code, record, ttl); err != nil {
		s.metrics.RecordAuthorizationCodeIssued(false)
		return nil, fmt.Errorf("failed to save authorization code: %w", err)
	}

	s.metrics.RecordAuthorizationCodeIssued(true)
	s.logger.Infow("authorization code issued",
		"client_id", params.ClientID,
		"user_id", params.UserID,
		"scope", params.Scopes.String(),
		"pkce", params.CodeChallenge != "",
	)

	out := *record
	return &out, nil
}

// ConsumeCode removes the code from the registry and returns it. The entry
// is gone after this call whatever the outcome, so a code can be redeemed
// at most once even when the caller's later checks fail.
func (s *AuthorizationService) ConsumeCode(
	ctx context.Context,
	code string,
) (*models.AuthorizationCode, error) {
	if code == "" {
		s.metrics.RecordAuthorizationCodeConsumed("invalid")
		return nil, ErrAuthCodeNotFound
	}

	record, err := s.store.Take(ctx, code)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.RecordAuthorizationCodeConsumed("invalid")
			return nil, ErrAuthCodeNotFound
		}
		return nil, err
	}
	if record.IsExpiredAt(s.now()) {
		s.metrics.RecordAuthorizationCodeConsumed("expired")
		return nil, ErrAuthCodeNotFound
	}

	s.metrics.RecordAuthorizationCodeConsumed("success")
	return record, nil
}

// RedeemCode consumes a code and checks it was issued to clientID for
// redirectURI and that codeVerifier satisfies the PKCE challenge.
func (s *AuthorizationService) RedeemCode(
	ctx context.Context,
	code, clientID, redirectURI, codeVerifier string,
) (*models.AuthorizationCode, error) {
	record, err := s.ConsumeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if record.ClientID != clientID {
		return nil, ErrAuthCodeClientMismatch
	}
	if record.RedirectURI != redirectURI {
		return nil, ErrAuthCodeRedirectURI
	}
	if !VerifyPKCE(record.CodeChallenge, record.CodeChallengeMethod, codeVerifier) {
		return nil, ErrInvalidCodeVerifier
	}
	return record, nil
}

// Sweep evicts expired codes and refreshes the active-code gauge.
func (s *AuthorizationService) Sweep(ctx context.Context) int {
	removed := s.store.Sweep(ctx)
	s.metrics.SetActiveAuthorizationCodesCount(s.store.Len())
	return removed
}

// ============================================================
// PKCE helpers (RFC 7636)
// ============================================================

// VerifyPKCE validates code_verifier against the stored code_challenge.
// Without a challenge there is nothing to verify. Methods are matched
// case-insensitively; an empty method means plain.
func VerifyPKCE(codeChallenge, method, codeVerifier string) bool {
	if codeChallenge == "" {
		return true
	}
	if codeVerifier == "" {
		return false
	}
	switch strings.ToUpper(method) {
	case "S256":
		return util.SecureCompare(util.S256Challenge(codeVerifier), codeChallenge)
	case "PLAIN", "":
		return util.SecureCompare(codeVerifier, codeChallenge)
	default:
		return false
	}
}
