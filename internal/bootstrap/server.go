package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/config"
	"github.com/notdulain/OAuth-Learning/internal/services"

	"github.com/appleboy/graceful"
	"go.uber.org/zap"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server, log *zap.SugaredLogger) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalw("failed to start server", "addr", srv.Addr, "error", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server, log *zap.SugaredLogger) {
	m.AddShutdownJob(func() error {
		log.Infow("shutting down server", "addr", srv.Addr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Errorw("server forced to shutdown", "error", err)
			return err
		}

		log.Infow("server exited", "addr", srv.Addr)
		return nil
	})
}

// addRegistrySweepJob periodically evicts expired sessions and authorization
// codes. Expiry is enforced on read, so the sweep only reclaims memory.
func addRegistrySweepJob(
	m *graceful.Manager,
	cfg *config.Config,
	sessionService *services.SessionService,
	authorizationService *services.AuthorizationService,
	log *zap.SugaredLogger,
) {
	if cfg.RegistrySweepInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.RegistrySweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sweepRegistries(ctx, sessionService, authorizationService, log)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// sweepRegistries runs one eviction pass over both registries
func sweepRegistries(
	ctx context.Context,
	sessionService *services.SessionService,
	authorizationService *services.AuthorizationService,
	log *zap.SugaredLogger,
) {
	sessions := sessionService.Sweep(ctx)
	codes := authorizationService.Sweep(ctx)
	if sessions > 0 || codes > 0 {
		log.Debugw("registry sweep", "sessions_evicted", sessions, "codes_evicted", codes)
	}
}
