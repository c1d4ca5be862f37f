// Package logger builds the zap logger shared by both servers and the CLI.
package logger

import (
	"fmt"
	"strings"

	"github.com/notdulain/OAuth-Learning/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a SugaredLogger for the given level ("debug", "info", ...) and
// format ("console" or "json"). An empty level means info.
func New(level, format string) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case config.LogFormatJSON:
		cfg = zap.NewProductionConfig()
	case config.LogFormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

// FromConfig builds the logger described by LOG_LEVEL and LOG_FORMAT,
// falling back to console/info when either is invalid.
func FromConfig(cfg *config.Config) *zap.SugaredLogger {
	l, err := New(cfg.LogLevel, cfg.LogFormat)
	if err == nil {
		return l
	}

	fallback, buildErr := New("info", config.LogFormatConsole)
	if buildErr != nil {
		return zap.NewNop().Sugar()
	}
	fallback.Warnw("invalid logging configuration, using defaults", "error", err)
	return fallback
}
