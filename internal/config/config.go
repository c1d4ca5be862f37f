package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Log format constants
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Default token lifetimes
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultIDTokenTTL      = 15 * time.Minute
	DefaultAuthCodeTTL     = 5 * time.Minute
	DefaultSessionTTL      = time.Hour

	DefaultAccessTokenAudience = "resource-server"

	defaultJWTSecret = "dev-only-shared-secret-change-me"
)

var (
	ErrMissingSecret = errors.New("signing secret is not configured")
	ErrInvalidTTL    = errors.New("ttl must be positive")
	ErrMissingIssuer = errors.New("JWT_ISSUER must not be empty")
)

type Config struct {
	// Server settings
	ServerAddr         string
	ResourceServerAddr string
	IsProduction       bool

	// Issuer and public URL of the authorization server
	Issuer        string
	AuthServerURL string

	// Signing secrets (each falls back to JWTSecret when unset)
	JWTSecret          string
	AccessTokenSecret  string
	RefreshTokenSecret string
	IDTokenSecret      string

	// Lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	IDTokenTTL      time.Duration
	AuthCodeTTL     time.Duration
	SessionTTL      time.Duration

	AccessTokenAudience string

	// Seed client
	LearningClientSecret string

	// Browser session hardening
	CookieSecure  bool
	CSRFEnabled   bool
	SessionSecret string

	// Background eviction of expired sessions and codes (0 disables)
	RegistrySweepInterval time.Duration

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", defaultJWTSecret)
	accessSecret := getEnv("ACCESS_TOKEN_SECRET", jwtSecret)
	issuer := strings.TrimRight(getEnv("JWT_ISSUER", "http://localhost:4000"), "/")

	return &Config{
		ServerAddr:         getEnv("SERVER_ADDR", ":4000"),
		ResourceServerAddr: getEnv("RESOURCE_SERVER_ADDR", ":5000"),
		IsProduction:       getEnvBool("IS_PRODUCTION", false),

		Issuer:        issuer,
		AuthServerURL: strings.TrimRight(getEnv("AUTH_SERVER_URL", issuer), "/"),

		JWTSecret:          jwtSecret,
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", jwtSecret),
		IDTokenSecret:      getEnv("ID_TOKEN_SECRET", accessSecret),

		AccessTokenTTL:  getEnvTTL("ACCESS_TOKEN_TTL", DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvTTL("REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL),
		IDTokenTTL:      getEnvTTL("ID_TOKEN_TTL", DefaultIDTokenTTL),
		AuthCodeTTL:     getEnvTTL("AUTH_CODE_TTL", DefaultAuthCodeTTL),
		SessionTTL:      getEnvTTL("SESSION_TTL", DefaultSessionTTL),

		AccessTokenAudience: getEnv("ACCESS_TOKEN_AUDIENCE", DefaultAccessTokenAudience),

		LearningClientSecret: getEnv("LEARNING_CLIENT_SECRET", "learning-client-secret"),

		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		CSRFEnabled:   getEnvBool("CSRF_ENABLED", false),
		SessionSecret: getEnv("SESSION_SECRET", ""),

		RegistrySweepInterval: getEnvDuration("REGISTRY_SWEEP_INTERVAL", time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", LogFormatConsole),
	}
}

// Validate reports configuration values the servers cannot run with.
func (c *Config) Validate() error {
	if c.Issuer == "" {
		return ErrMissingIssuer
	}
	for name, secret := range map[string]string{
		"ACCESS_TOKEN_SECRET":  c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET": c.RefreshTokenSecret,
		"ID_TOKEN_SECRET":      c.IDTokenSecret,
	} {
		if secret == "" {
			return fmt.Errorf("%w: %s (or JWT_SECRET)", ErrMissingSecret, name)
		}
	}
	for name, ttl := range map[string]time.Duration{
		"ACCESS_TOKEN_TTL":  c.AccessTokenTTL,
		"REFRESH_TOKEN_TTL": c.RefreshTokenTTL,
		"ID_TOKEN_TTL":      c.IDTokenTTL,
		"AUTH_CODE_TTL":     c.AuthCodeTTL,
		"SESSION_TTL":       c.SessionTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTTL, name)
		}
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in development secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.AccessTokenSecret == defaultJWTSecret || c.RefreshTokenSecret == defaultJWTSecret
}

var ttlPattern = regexp.MustCompile(`^(\d+)([smhdSMHD]?)$`)

// ParseTTL parses a lifetime of the form <number><s|m|h|d>.
// A bare number is interpreted as seconds.
func ParseTTL(value string) (time.Duration, error) {
	match := ttlPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0, fmt.Errorf("invalid ttl %q", value)
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", value, err)
	}

	unit := time.Second
	switch strings.ToLower(match[2]) {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	return time.Duration(n) * unit, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvTTL(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := ParseTTL(value); err == nil {
			return d
		}
	}
	return defaultValue
}
