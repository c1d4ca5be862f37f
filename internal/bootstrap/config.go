package bootstrap

import (
	"fmt"

	"github.com/notdulain/OAuth-Learning/internal/config"

	"go.uber.org/zap"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config, log *zap.SugaredLogger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateSessionConfig(cfg); err != nil {
		return fmt.Errorf("invalid session configuration: %w", err)
	}
	if cfg.UsesDefaultSecret() {
		log.Warnw("tokens are signed with the built-in development secret; set JWT_SECRET")
	}
	return nil
}

// validateSessionConfig checks that CSRF protection has a key to sign its cookie with
func validateSessionConfig(cfg *config.Config) error {
	if cfg.CSRFEnabled && cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required when CSRF_ENABLED=true")
	}
	return nil
}
