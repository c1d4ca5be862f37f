package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/notdulain/OAuth-Learning/internal/cache"
	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/models"
	"github.com/notdulain/OAuth-Learning/internal/services"
	"github.com/notdulain/OAuth-Learning/internal/token"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Application holds all initialized components of the authorization server
type Application struct {
	Config *config.Config
	Logger *zap.SugaredLogger

	// Core infrastructure
	MetricsRecorder core.Recorder
	SessionStore    *cache.MemoryStore[*models.Session]
	CodeStore       *cache.MemoryStore[*models.AuthorizationCode]
	Codec           *token.Codec

	// Services
	ClientService        *services.ClientService
	UserService          *services.UserService
	SessionService       *services.SessionService
	AuthorizationService *services.AuthorizationService
	TokenService         *services.TokenService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// ResourceApplication holds the components of the resource server. It shares
// nothing with the authorization server except the token signing secrets.
type ResourceApplication struct {
	Config *config.Config
	Logger *zap.SugaredLogger

	MetricsRecorder core.Recorder
	Codec           *token.Codec

	Router *gin.Engine
	Server *http.Server
}

// NewAuthServer runs every initialization phase of the authorization server
// without starting it.
func NewAuthServer(cfg *config.Config, log *zap.SugaredLogger) (*Application, error) {
	app := &Application{
		Config: cfg,
		Logger: log,
	}

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg, log); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	app.initializeInfrastructure()

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	return app, nil
}

// RunAuthServer initializes and starts the authorization server and blocks
// until it has shut down.
func RunAuthServer(cfg *config.Config, log *zap.SugaredLogger) error {
	app, err := NewAuthServer(cfg, log)
	if err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()
	return nil
}

// initializeInfrastructure sets up metrics, the in-memory registries and the token codec
func (app *Application) initializeInfrastructure() {
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.SessionStore, app.CodeStore = initializeStores()
	app.Codec = token.NewCodec(app.Config)
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	app.ClientService,
		app.UserService,
		app.SessionService,
		app.AuthorizationService,
		app.TokenService = initializeServices(
		app.Config,
		app.Codec,
		app.SessionStore,
		app.CodeStore,
		app.MetricsRecorder,
		app.Logger,
	)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.ClientService,
		app.UserService,
		app.SessionService,
		app.AuthorizationService,
		app.TokenService,
		app.MetricsRecorder,
		app.Logger,
	)

	app.Router = setupAuthRouter(
		app.Config,
		app.HandlerSet,
		app.Codec,
		app.MetricsRecorder,
		app.Logger,
	)

	app.Server = createHTTPServer(app.Config.ServerAddr, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	logAuthServerStartup(app.Config, app.Logger)

	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Logger)
	addRegistrySweepJob(m, app.Config, app.SessionService, app.AuthorizationService, app.Logger)

	<-m.Done()
}

// NewResourceServer builds the resource server without starting it.
func NewResourceServer(cfg *config.Config, log *zap.SugaredLogger) (*ResourceApplication, error) {
	if err := validateAllConfiguration(cfg, log); err != nil {
		return nil, err
	}

	app := &ResourceApplication{
		Config:          cfg,
		Logger:          log,
		MetricsRecorder: initializeMetrics(cfg),
		Codec:           token.NewCodec(cfg),
	}
	app.Router = setupResourceRouter(cfg, initializeResourceHandler(), app.Codec, app.MetricsRecorder, log)
	app.Server = createHTTPServer(cfg.ResourceServerAddr, app.Router)
	return app, nil
}

// RunResourceServer initializes and starts the resource server and blocks
// until it has shut down.
func RunResourceServer(cfg *config.Config, log *zap.SugaredLogger) error {
	app, err := NewResourceServer(cfg, log)
	if err != nil {
		return fmt.Errorf("resource server: %w", err)
	}

	m := graceful.NewManager()
	log.Infow("resource server starting", "addr", cfg.ResourceServerAddr)
	addServerRunningJob(m, app.Server, log)
	addServerShutdownJob(m, app.Server, log)
	<-m.Done()
	return nil
}
