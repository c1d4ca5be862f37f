package bootstrap

import (
	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/metrics"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"go.uber.org/zap"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	return metrics.Init(cfg.MetricsEnabled)
}

// initializeStores creates the in-memory session and authorization code registries
func initializeStores() (
	*cache.MemoryStore[*models.Session],
	*cache.MemoryStore[*models.AuthorizationCode],
) {
	return cache.NewMemoryStore[*models.Session](),
		cache.NewMemoryStore[*models.AuthorizationCode]()
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	codec *token.Codec,
	sessionStore core.Store[*models.Session],
	codeStore core.Store[*models.AuthorizationCode],
	recorder core.Recorder,
	log *zap.SugaredLogger,
) (
	*services.ClientService,
	*services.UserService,
	*services.SessionService,
	*services.AuthorizationService,
	*services.TokenService,
) {
	opts := []services.Option{
		services.WithRecorder(recorder),
		services.WithLogger(log),
	}

	clientService := services.NewClientService(services.DefaultClients(cfg.LearningClientSecret)...)
	userService := services.NewUserService(services.DefaultUsers()...)
	sessionService := services.NewSessionService(sessionStore, cfg.SessionTTL, opts...)
	authorizationService := services.NewAuthorizationService(
		clientService,
		codeStore,
		cfg.AuthCodeTTL,
		opts...,
	)
	tokenService := services.NewTokenService(
		codec,
		clientService,
		userService,
		authorizationService,
		opts...,
	)

	return clientService, userService, sessionService, authorizationService, tokenService
}
