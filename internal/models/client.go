package models

import "slices"

// Grant types (RFC 6749)
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeRefreshToken      = "refresh_token"
)

// Client is a registered OAuth client. Clients are loaded once at startup
// and never mutated.
type Client struct {
	ClientID     string
	ClientSecret string
	Name         string
	RedirectURIs []string
	Grants       []string
	Scopes       Scopes // allowed scopes, also the default grant
	Audience     string // optional access-token audience override
}

// AllowsGrant returns true if the client may use grantType.
func (c *Client) AllowsGrant(grantType string) bool {
	return slices.Contains(c.Grants, grantType)
}
