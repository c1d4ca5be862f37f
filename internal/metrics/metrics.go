package metrics

import (
	"sync"

	"github.com/notdulain/OAuth-Learning/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is re-exported from core for callers that import only this package.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authorization Code Metrics
	AuthorizationCodesTotal         *prometheus.CounterVec
	AuthorizationCodesConsumedTotal *prometheus.CounterVec
	AuthorizationCodesActive        prometheus.Gauge

	// Token Metrics
	TokensIssuedTotal       *prometheus.CounterVec
	TokensRefreshedTotal    *prometheus.CounterVec
	TokenValidationTotal    *prometheus.CounterVec
	TokenGenerationDuration *prometheus.HistogramVec
	TokenValidationDuration prometheus.Histogram

	// Authentication Metrics
	AuthLoginTotal   *prometheus.CounterVec
	AuthLogoutTotal  prometheus.Counter
	AuthConsentTotal *prometheus.CounterVec

	// Session Metrics
	SessionsActive       prometheus.Gauge
	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal *prometheus.CounterVec
	SessionDuration      prometheus.Histogram

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		// Authorization Code Metrics
		AuthorizationCodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_authorization_codes_total",
				Help: "Total number of authorization codes issued",
			},
			[]string{"result"}, // success, error
		),
		AuthorizationCodesConsumedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_authorization_codes_consumed_total",
				Help: "Total number of authorization code redemption attempts",
			},
			[]string{"result"}, // success, expired, invalid
		),
		AuthorizationCodesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oauth_authorization_codes_active",
				Help: "Current number of unredeemed authorization codes",
			},
		),

		// Token Metrics
		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_tokens_issued_total",
				Help: "Total number of tokens issued",
			},
			[]string{
				"token_type",
				"grant_type",
			}, // token_type: access, refresh, id; grant_type: authorization_code, refresh_token, client_credentials
		),
		TokensRefreshedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_tokens_refreshed_total",
				Help: "Total number of token refresh attempts",
			},
			[]string{"result"}, // success, error
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_validation_total",
				Help: "Total number of bearer token validations",
			},
			[]string{"result"}, // valid, invalid, expired, missing
		),
		TokenGenerationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oauth_token_generation_duration_seconds",
				Help:    "Time taken to sign tokens",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"token_type"},
		),
		TokenValidationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oauth_token_validation_duration_seconds",
				Help:    "Time taken to validate bearer tokens",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Authentication Metrics
		AuthLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, failure
		),
		AuthLogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_logout_total",
				Help: "Total number of logouts",
			},
		),
		AuthConsentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_consent_total",
				Help: "Total number of consent decisions",
			},
			[]string{"decision"}, // approve, deny
		),

		// Session Metrics
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sessions_active",
				Help: "Current number of active sessions",
			},
		),
		SessionsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
		SessionsExpiredTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sessions_expired_total",
				Help: "Total number of sessions ended",
			},
			[]string{"reason"}, // timeout, logout
		),
		SessionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "session_duration_seconds",
				Help: "Duration of user sessions",
				Buckets: []float64{
					60,
					300,
					600,
					1800,
					3600,
					7200,
					14400,
					28800,
				}, // 1m, 5m, 10m, 30m, 1h, 2h, 4h, 8h
			},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}

	return m
}
