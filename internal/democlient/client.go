// Package democlient is a command-line OAuth client that walks the
// Authorization Code Flow with PKCE against the authorization server and
// then calls the resource server with the issued access token.
package democlient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultAuthServerURL     = "http://localhost:4000"
	DefaultResourceServerURL = "http://localhost:5000"
	DefaultRedirectURL       = "http://localhost:3000/callback"

	defaultHTTPTimeout = 10 * time.Second
	defaultFlowTimeout = 5 * time.Minute
)

// DefaultScopes is requested when the caller does not choose any.
var DefaultScopes = []string{
	models.ScopeReadUsers,
	models.ScopeReadProducts,
	models.ScopeOpenID,
	models.ScopeProfile,
	models.ScopeEmail,
}

// Config describes the client registration and the servers to talk to.
type Config struct {
	AuthServerURL     string
	ResourceServerURL string
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	Scopes            []string

	// OpenBrowser launches the system browser on the authorize URL.
	OpenBrowser bool
	// Refresh performs one refresh_token grant after the exchange.
	Refresh bool
	// FlowTimeout bounds the wait for the browser callback.
	FlowTimeout time.Duration
}

// DefaultConfig returns the settings matching the built-in learning client.
func DefaultConfig() Config {
	return Config{
		AuthServerURL:     DefaultAuthServerURL,
		ResourceServerURL: DefaultResourceServerURL,
		ClientID:          services.LearningClientID,
		ClientSecret:      "learning-client-secret",
		RedirectURL:       DefaultRedirectURL,
		Scopes:            DefaultScopes,
		OpenBrowser:       true,
		FlowTimeout:       defaultFlowTimeout,
	}
}

// Client runs the demo flow.
type Client struct {
	cfg        Config
	oauth      *oauth2.Config
	httpClient *http.Client
	retry      retrySettings
	openURL    func(string) error
	out        io.Writer
	log        *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for token and resource requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBrowserOpener replaces browser.OpenURL.
func WithBrowserOpener(open func(string) error) Option {
	return func(c *Client) {
		if open != nil {
			c.openURL = open
		}
	}
}

// WithOutput sets where the flow report is printed.
func WithOutput(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.out = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetry overrides how resource requests are retried.
func WithRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.retry.maxRetries = maxRetries
		}
		if initialDelay > 0 {
			c.retry.retryDelay = initialDelay
		}
	}
}

func New(cfg Config, opts ...Option) *Client {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	if cfg.FlowTimeout <= 0 {
		cfg.FlowTimeout = defaultFlowTimeout
	}
	authBase := strings.TrimRight(cfg.AuthServerURL, "/")

	c := &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authBase + "/authorize",
				TokenURL:  authBase + "/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry:      defaultRetrySettings(),
		openURL:    browser.OpenURL,
		out:        os.Stdout,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL builds the authorize URL carrying state and the S256
// challenge derived from verifier.
func (c *Client) AuthCodeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange redeems an authorization code, proving possession of verifier.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// Refresh trades the refresh token of tok for a new token pair.
func (c *Client) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, errors.New("no refresh token to use")
	}
	// An already-expired token forces the source to hit the token endpoint.
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken, Expiry: time.Unix(1, 0)}
	fresh, err := c.oauth.TokenSource(c.withHTTPClient(ctx), stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fresh, nil
}

// IDToken returns the id_token returned alongside tok, if any.
func IDToken(tok *oauth2.Token) string {
	raw, _ := tok.Extra("id_token").(string)
	return raw
}

// DecodeClaims parses a JWT without verifying it. The demo client has no
// business verifying tokens; it only displays them.
func DecodeClaims(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
