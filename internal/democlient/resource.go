package democlient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/models"

	retry "github.com/appleboy/go-httpretry"
	"golang.org/x/oauth2"
)

const (
	defaultMaxRetries    = 3
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second
)

// retrySettings configure the resource server client. Network errors, 5xx
// and 429 are retried with exponential backoff.
type retrySettings struct {
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func defaultRetrySettings() retrySettings {
	return retrySettings{
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
	}
}

// APIError is a non-2xx answer from the resource server.
type APIError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("resource server returned %d %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("resource server returned %d %s", e.StatusCode, e.Code)
}

// FetchUsers calls GET /api/users with the access token.
func (c *Client) FetchUsers(ctx context.Context, accessToken string) ([]models.Profile, error) {
	var body struct {
		Data []models.Profile `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/users", accessToken, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// FetchProducts calls the public GET /api/products.
func (c *Client) FetchProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var body struct {
		Data []models.Product `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/products?limit=%d", limit), "", &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// resourceClient wraps the HTTP client in a retrying client. With an access
// token the oauth2 transport adds the bearer header to every attempt.
func (c *Client) resourceClient(ctx context.Context, accessToken string) (*retry.Client, error) {
	hc := c.httpClient
	if accessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		hc = oauth2.NewClient(c.withHTTPClient(ctx), src)
		hc.Timeout = c.httpClient.Timeout
	}

	rc, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(hc),
		retry.WithMaxRetries(c.retry.maxRetries),
		retry.WithInitialRetryDelay(c.retry.retryDelay),
		retry.WithMaxRetryDelay(c.retry.maxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}
	return rc, nil
}

func (c *Client) getJSON(ctx context.Context, path, accessToken string, out any) error {
	rc, err := c.resourceClient(ctx, accessToken)
	if err != nil {
		return err
	}

	target := strings.TrimRight(c.cfg.ResourceServerURL, "/") + path
	c.log.Debugw("calling resource server", "url", target)
	resp, err := rc.Get(ctx, target)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(payload, apiErr)
		return apiErr
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
