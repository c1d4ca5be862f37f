package bootstrap

import (
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/handlers"
	"github.com/notdulain/OAuth-Learning/internal/metrics"
	"github.com/notdulain/OAuth-Learning/internal/middleware"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// csrfSessionName is the gin-contrib session cookie holding the CSRF token.
const csrfSessionName = "oauth_csrf"

// setupAuthRouter configures the authorization server routes and middleware
func setupAuthRouter(
	cfg *config.Config,
	h handlerSet,
	codec *token.Codec,
	recorder core.Recorder,
	log *zap.SugaredLogger,
) *gin.Engine {
	r := newEngine(cfg, recorder, log)

	r.GET("/health", handlers.Health)
	setupMetricsEndpoint(r, cfg, log)

	// Browser flow: login, consent, logout
	browser := r.Group("")
	if cfg.CSRFEnabled {
		browser.Use(sessionMiddleware(cfg), middleware.CSRFMiddleware())
	}
	{
		browser.GET("/authorize", h.authorization.Authorize)
		browser.POST("/login", h.authorization.Login)
		browser.POST("/consent", h.authorization.Consent)
		browser.POST("/logout", h.authorization.Logout)
	}

	// Back-channel token endpoint
	r.POST("/token", middleware.NoStore(), middleware.ClientAuth(h.clientService), h.token.Token)

	// OpenID Connect
	r.GET("/.well-known/openid-configuration", h.oidc.Discovery)
	r.GET("/.well-known/jwks.json", h.oidc.JWKS)
	r.GET(
		"/userinfo",
		middleware.NoStore(),
		middleware.BearerAuth(codec, cfg.AccessTokenAudience, recorder),
		h.oidc.UserInfo,
	)

	return r
}

// setupResourceRouter configures the resource server routes and middleware
func setupResourceRouter(
	cfg *config.Config,
	h *handlers.ResourceHandler,
	codec *token.Codec,
	recorder core.Recorder,
	log *zap.SugaredLogger,
) *gin.Engine {
	r := newEngine(cfg, recorder, log)

	r.GET("/health", handlers.Health)
	setupMetricsEndpoint(r, cfg, log)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		users.Use(
			middleware.BearerAuth(codec, cfg.AccessTokenAudience, recorder),
			middleware.RequireScopes(models.ScopeReadUsers),
		)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)

		api.GET("/products", h.ListProducts)
	}

	r.NoRoute(handlers.NotFound)

	return r
}

// newEngine builds a gin engine with the middleware shared by both servers
func newEngine(cfg *config.Config, recorder core.Recorder, log *zap.SugaredLogger) *gin.Engine {
	setupGinMode(cfg, log)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.CustomRecovery(recoveryHandler(log)))

	return r
}

// recoveryHandler reports panics as an opaque server_error
func recoveryHandler(log *zap.SugaredLogger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Errorw("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Internal server error",
		})
	}
}

// sessionMiddleware configures the cookie session backing the CSRF token
func sessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(csrfSessionName, store)
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, log *zap.SugaredLogger) {
	switch {
	case !cfg.MetricsEnabled:
		log.Debugw("prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Infow("prometheus metrics enabled", "path", "/metrics", "auth", "bearer")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Infow("prometheus metrics enabled", "path", "/metrics", "auth", "none")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config, log *zap.SugaredLogger) {
	// Tests select gin.TestMode themselves.
	if gin.Mode() == gin.TestMode {
		return
	}
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Debugw("gin mode selected", "mode", mode)
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

// logAuthServerStartup logs server startup information
func logAuthServerStartup(cfg *config.Config, log *zap.SugaredLogger) {
	log.Infow("authorization server starting",
		"addr", cfg.ServerAddr,
		"issuer", cfg.Issuer,
		"csrf", cfg.CSRFEnabled,
	)
	log.Infow("discovery document",
		"url", cfg.AuthServerURL+"/.well-known/openid-configuration")
}
