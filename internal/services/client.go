package services

import (
	"errors"

	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/util"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrClientNotFound           = errors.New("client not found")
	ErrInvalidClientCredentials = errors.New("invalid client credentials")
)

// LearningClientID is the client registered out of the box.
const LearningClientID = "learning-client"

// DefaultClients returns the static client table.
func DefaultClients(learningClientSecret string) []*models.Client {
	return []*models.Client{
		{
			ClientID:     LearningClientID,
			ClientSecret: learningClientSecret,
			Name:         "Local Learning Client",
			RedirectURIs: []string{"http://localhost:3000/callback"},
			Grants: []string{
				models.GrantTypeClientCredentials,
				models.GrantTypeAuthorizationCode,
				models.GrantTypeRefreshToken,
			},
			Scopes: models.Scopes{
				models.ScopeReadUsers,
				models.ScopeReadProducts,
				models.ScopeOpenID,
				models.ScopeProfile,
				models.ScopeEmail,
			},
		},
	}
}

// ClientService is the read-only client registry.
type ClientService struct {
	clients map[string]*models.Client
}

func NewClientService(clients ...*models.Client) *ClientService {
	m := make(map[string]*models.Client, len(clients))
	for _, c := range clients {
		m[c.ClientID] = c
	}
	return &ClientService{clients: m}
}

// GetClient looks up a client by id.
func (s *ClientService) GetClient(clientID string) (*models.Client, error) {
	if clientID == "" {
		return nil, ErrClientNotFound
	}
	client, ok := s.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// ValidateClientCredentials authenticates a client by id and secret.
// Unknown clients and wrong secrets yield the same error.
func (s *ClientService) ValidateClientCredentials(clientID, clientSecret string) (*models.Client, error) {
	client, err := s.GetClient(clientID)
	if err != nil {
		return nil, ErrInvalidClientCredentials
	}
	if !verifySecret(client.ClientSecret, clientSecret) {
		return nil, ErrInvalidClientCredentials
	}
	return client, nil
}

// IsRedirectURIAllowed reports whether uri exactly matches a registered redirect URI.
// No normalization is applied: trailing slashes and query strings matter.
func (s *ClientService) IsRedirectURIAllowed(client *models.Client, uri string) bool {
	if client == nil || uri == "" {
		return false
	}
	for _, registered := range client.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// FilterScopes drops requested scopes the client may not use. An empty
// result falls back to the client's full scope list.
func (s *ClientService) FilterScopes(client *models.Client, requested models.Scopes) models.Scopes {
	filtered := requested.Intersect(client.Scopes)
	if len(filtered) == 0 {
		return client.Scopes.Clone()
	}
	return filtered
}

// AllowsGrant reports whether the client may use grantType at the token endpoint.
func (s *ClientService) AllowsGrant(client *models.Client, grantType string) bool {
	return client != nil && client.AllowsGrant(grantType)
}

// verifySecret compares a stored secret with a presented one. Stored bcrypt
// hashes are checked with bcrypt, anything else in constant time.
func verifySecret(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	if util.IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
	}
	return util.SecureCompare(stored, presented)
}
