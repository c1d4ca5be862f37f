package services

import (
	"sync"
	"testing"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/token"
)

const testClientSecret = "learning-client-secret"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Issuer:              "http://localhost:4000",
		AccessTokenSecret:   "access-secret",
		RefreshTokenSecret:  "refresh-secret",
		IDTokenSecret:       "id-secret",
		AccessTokenTTL:      config.DefaultAccessTokenTTL,
		RefreshTokenTTL:     config.DefaultRefreshTokenTTL,
		IDTokenTTL:          config.DefaultIDTokenTTL,
		AuthCodeTTL:         config.DefaultAuthCodeTTL,
		SessionTTL:          config.DefaultSessionTTL,
		AccessTokenAudience: config.DefaultAccessTokenAudience,
	}
}

// testEnv wires every service against in-memory stores sharing one clock.
type testEnv struct {
	clock    *testClock
	codec    *token.Codec
	clients  *ClientService
	users    *UserService
	sessions *SessionService
	authz    *AuthorizationService
	tokens   *TokenService
}

func newTestEnv(t *testing.T, extraClients ...*models.Client) *testEnv {
	t.Helper()

	clock := newTestClock()
	cfg := testConfig()

	codec := token.NewCodec(cfg, token.WithClock(clock.Now))
	clients := NewClientService(append(DefaultClients(testClientSecret), extraClients...)...)
	users := NewUserService(DefaultUsers()...)

	sessionStore := cache.NewMemoryStore[*models.Session](cache.WithClock(clock.Now))
	codeStore := cache.NewMemoryStore[*models.AuthorizationCode](cache.WithClock(clock.Now))

	sessions := NewSessionService(sessionStore, cfg.SessionTTL, WithClock(clock.Now))
	authz := NewAuthorizationService(clients, codeStore, cfg.AuthCodeTTL, WithClock(clock.Now))
	tokens := NewTokenService(codec, clients, users, authz, WithClock(clock.Now))

	return &testEnv{
		clock:    clock,
		codec:    codec,
		clients:  clients,
		users:    users,
		sessions: sessions,
		authz:    authz,
		tokens:   tokens,
	}
}

func (e *testEnv) learningClient(t *testing.T) *models.Client {
	t.Helper()
	client, err := e.clients.GetClient(LearningClientID)
	if err != nil {
		t.Fatalf("learning client missing: %v", err)
	}
	return client
}
