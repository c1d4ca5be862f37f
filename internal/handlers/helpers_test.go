package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/middleware"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"github.com/gin-gonic/gin"
)

const (
	testClientSecret = "learning-client-secret"
	testRedirectURI  = "http://localhost:3000/callback"
	testVerifier     = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
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

type testServer struct {
	cfg      *config.Config
	clock    *testClock
	codec    *token.Codec
	clients  *services.ClientService
	users    *services.UserService
	sessions *services.SessionService
	authz    *services.AuthorizationService
	tokens   *services.TokenService
	router   *gin.Engine
}

// newTestServer mounts every authorization server handler on a bare gin
// engine, with all services sharing one controllable clock.
func newTestServer(t *testing.T, extraClients ...*models.Client) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Issuer:              "http://localhost:4000",
		AuthServerURL:       "http://localhost:4000",
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
	clock := &testClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}

	codec := token.NewCodec(cfg, token.WithClock(clock.Now))
	clients := services.NewClientService(
		append(services.DefaultClients(testClientSecret), extraClients...)...,
	)
	users := services.NewUserService(services.DefaultUsers()...)
	sessions := services.NewSessionService(
		cache.NewMemoryStore[*models.Session](cache.WithClock(clock.Now)),
		cfg.SessionTTL,
		services.WithClock(clock.Now),
	)
	authz := services.NewAuthorizationService(
		clients,
		cache.NewMemoryStore[*models.AuthorizationCode](cache.WithClock(clock.Now)),
		cfg.AuthCodeTTL,
		services.WithClock(clock.Now),
	)
	tokens := services.NewTokenService(codec, clients, users, authz, services.WithClock(clock.Now))

	authHandler := NewAuthorizationHandler(authz, clients, users, sessions, cfg, nil, nil)
	tokenHandler := NewTokenHandler(tokens)
	oidcHandler := NewOIDCHandler(users, cfg)

	r := gin.New()
	r.GET("/authorize", authHandler.Authorize)
	r.POST("/login", authHandler.Login)
	r.POST("/consent", authHandler.Consent)
	r.POST("/logout", authHandler.Logout)
	r.POST("/token", middleware.ClientAuth(clients), tokenHandler.Token)
	r.GET("/.well-known/openid-configuration", oidcHandler.Discovery)
	r.GET("/.well-known/jwks.json", oidcHandler.JWKS)
	r.GET("/userinfo", middleware.BearerAuth(codec, cfg.AccessTokenAudience, nil), oidcHandler.UserInfo)

	return &testServer{
		cfg:      cfg,
		clock:    clock,
		codec:    codec,
		clients:  clients,
		users:    users,
		sessions: sessions,
		authz:    authz,
		tokens:   tokens,
		router:   r,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return s.do(req)
}

func (s *testServer) post(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return s.do(req)
}

// signIn creates a session for userID and returns its cookie.
func (s *testServer) signIn(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	session, err := s.sessions.Create(t.Context(), userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: SessionCookieName, Value: session.SID}
}

func cookieFrom(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func authorizeQuery(overrides map[string]string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {services.LearningClientID},
		"redirect_uri":  {testRedirectURI},
		"scope":         {"openid profile read:users"},
		"state":         {"xyz"},
	}
	for k, v := range overrides {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	return q.Encode()
}
