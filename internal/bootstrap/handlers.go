package bootstrap

import (
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/handlers"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"go.uber.org/zap"
)

// handlerSet holds all HTTP handlers of the authorization server and the
// services the router needs for middleware
type handlerSet struct {
	authorization *handlers.AuthorizationHandler
	token         *handlers.TokenHandler
	oidc          *handlers.OIDCHandler
	clientService *services.ClientService
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	clientService *services.ClientService,
	userService *services.UserService,
	sessionService *services.SessionService,
	authorizationService *services.AuthorizationService,
	tokenService *services.TokenService,
	recorder core.Recorder,
	log *zap.SugaredLogger,
) handlerSet {
	return handlerSet{
		authorization: handlers.NewAuthorizationHandler(
			authorizationService,
			clientService,
			userService,
			sessionService,
			cfg,
			recorder,
			log,
		),
		token:         handlers.NewTokenHandler(tokenService),
		oidc:          handlers.NewOIDCHandler(userService, cfg),
		clientService: clientService,
	}
}

// initializeResourceHandler creates the resource server handler over the sample data
func initializeResourceHandler() *handlers.ResourceHandler {
	return handlers.NewResourceHandler(handlers.DefaultProfiles(), handlers.DefaultProducts())
}
