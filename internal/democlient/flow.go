package democlient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/util"

	"github.com/a-h/templ"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	ErrStateMismatch = errors.New("state mismatch")
	ErrMissingCode   = errors.New("callback carried no authorization code")
)

// AuthorizationError is an error reported on the redirect URI.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "authorization failed: " + e.Code
	}
	return "authorization failed: " + e.Code + ": " + e.Description
}

// Result is everything the demo flow obtained.
type Result struct {
	Token     *oauth2.Token
	Refreshed *oauth2.Token
	Claims    jwt.MapClaims
	IDClaims  jwt.MapClaims
	Users     int
}

type callbackResult struct {
	code string
	err  error
}

func callbackPage(title, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, m := templ.EscapeString(title), templ.EscapeString(message)
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>`+t+`</title></head>
<body><h1>`+t+`</h1><p>`+m+`</p><p>You can close this window.</p></body></html>
`)
		return err
	})
}

// Run performs the whole flow: it listens for the callback, sends the user
// to the authorize URL, exchanges the code, calls the resource server and
// optionally refreshes once.
func (c *Client) Run(ctx context.Context) (*Result, error) {
	redirect, err := url.Parse(c.cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen for callback on %s: %w", redirect.Host, err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.Handle(redirect.Path, c.callbackHandler(state, results))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- callbackResult{err: fmt.Errorf("callback server: %w", err)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := c.AuthCodeURL(state, verifier)
	c.printf("Authorize URL:\n  %s\n\n", authURL)
	if c.cfg.OpenBrowser {
		if err := c.openURL(authURL); err != nil {
			c.log.Warnw("failed to open browser", "error", err)
			c.printf("Open the URL above in your browser to continue.\n")
		}
	}
	c.printf("Waiting for the callback on %s ...\n", c.cfg.RedirectURL)

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.FlowTimeout)
	defer cancel()

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for callback: %w", waitCtx.Err())
	}

	return c.complete(ctx, code, verifier)
}

// complete runs everything after the callback.
func (c *Client) complete(ctx context.Context, code, verifier string) (*Result, error) {
	tok, err := c.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, err
	}
	result := &Result{Token: tok}

	c.printf("\nToken response:\n  token_type:    %s\n  expires:       %s\n  scope:         %v\n",
		tok.TokenType, tok.Expiry.Format(time.RFC3339), tok.Extra("scope"))

	if claims, err := DecodeClaims(tok.AccessToken); err == nil {
		result.Claims = claims
		c.printClaims("Access token claims", claims)
	}
	if raw := IDToken(tok); raw != "" {
		if claims, err := DecodeClaims(raw); err == nil {
			result.IDClaims = claims
			c.printClaims("ID token claims", claims)
		}
	}

	users, err := c.FetchUsers(ctx, tok.AccessToken)
	if err != nil {
		c.printf("\nGET /api/users failed: %v\n", err)
	} else {
		result.Users = len(users)
		c.printf("\nGET /api/users returned %d users:\n", len(users))
		for _, u := range users {
			c.printf("  %s  %-16s %s\n", u.ID, u.Name, u.Email)
		}
	}

	if c.cfg.Refresh {
		fresh, err := c.Refresh(ctx, tok)
		if err != nil {
			return result, err
		}
		result.Refreshed = fresh
		c.printf("\nRefreshed access token, expires %s\n", fresh.Expiry.Format(time.RFC3339))
	}

	return result, nil
}

// callbackHandler accepts exactly one redirect and reports it on results.
func (c *Client) callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r.URL.Query(), state)

		title, message, status := "Authorization complete", "The demo client received the code.", http.StatusOK
		if res.err != nil {
			title, message, status = "Authorization failed", res.err.Error(), http.StatusBadRequest
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = callbackPage(title, message).Render(r.Context(), w)

		select {
		case results <- res:
		default:
		}
	})
}

func parseCallback(q url.Values, state string) callbackResult {
	if errCode := q.Get("error"); errCode != "" {
		return callbackResult{err: &AuthorizationError{
			Code:        errCode,
			Description: q.Get("error_description"),
		}}
	}
	if q.Get("state") != state {
		return callbackResult{err: ErrStateMismatch}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: ErrMissingCode}
	}
	return callbackResult{code: code}
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Client) printClaims(title string, claims jwt.MapClaims) {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c.printf("\n%s:\n", title)
	for _, k := range keys {
		c.printf("  %-20s %v\n", k, claims[k])
	}
}

func randomState() (string, error) {
	b, err := util.CryptoRandomBytes(16)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
