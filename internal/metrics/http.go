package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// NoopMetrics or unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/api/users/:id") or "unknown" for unmatched routes
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordAuthorizationCodeIssued records authorization code generation
func (m *Metrics) RecordAuthorizationCodeIssued(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.AuthorizationCodesTotal.WithLabelValues(result).Inc()

	if success {
		m.AuthorizationCodesActive.Inc()
	}
}

// RecordAuthorizationCodeConsumed records a redemption attempt
func (m *Metrics) RecordAuthorizationCodeConsumed(result string) {
	// result: success, expired, invalid
	m.AuthorizationCodesConsumedTotal.WithLabelValues(result).Inc()

	// The entry leaves the registry on success and on expiry
	if result == resultSuccess || result == "expired" {
		m.AuthorizationCodesActive.Dec()
	}
}

// RecordTokenIssued records token issuance
func (m *Metrics) RecordTokenIssued(tokenType, grantType string, generationTime time.Duration) {
	m.TokensIssuedTotal.WithLabelValues(tokenType, grantType).Inc()
	m.TokenGenerationDuration.WithLabelValues(tokenType).Observe(generationTime.Seconds())
}

// RecordTokenRefresh records token refresh attempt
func (m *Metrics) RecordTokenRefresh(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.TokensRefreshedTotal.WithLabelValues(result).Inc()
}

// RecordTokenValidation records bearer token validation
func (m *Metrics) RecordTokenValidation(result string, duration time.Duration) {
	// result: valid, invalid, expired, missing
	m.TokenValidationTotal.WithLabelValues(result).Inc()
	m.TokenValidationDuration.Observe(duration.Seconds())
}

// RecordLogin records login attempt
func (m *Metrics) RecordLogin(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.AuthLoginTotal.WithLabelValues(result).Inc()
}

// RecordLogout records logout
func (m *Metrics) RecordLogout(sessionDuration time.Duration) {
	m.AuthLogoutTotal.Inc()
	m.SessionsActive.Dec()
	m.SessionsExpiredTotal.WithLabelValues("logout").Inc()
	m.SessionDuration.Observe(sessionDuration.Seconds())
}

// RecordConsent records a consent decision
func (m *Metrics) RecordConsent(decision string) {
	m.AuthConsentTotal.WithLabelValues(decision).Inc()
}

// RecordSessionCreated records a new session
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreatedTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionExpired records session expiration
func (m *Metrics) RecordSessionExpired(reason string, duration time.Duration) {
	m.SessionsActive.Dec()
	m.SessionsExpiredTotal.WithLabelValues(reason).Inc()
	m.SessionDuration.Observe(duration.Seconds())
}

// SetActiveSessionsCount sets the current count of active sessions (for periodic updates)
func (m *Metrics) SetActiveSessionsCount(count int) {
	m.SessionsActive.Set(float64(count))
}

// SetActiveAuthorizationCodesCount sets the current count of unredeemed codes (for periodic updates)
func (m *Metrics) SetActiveAuthorizationCodesCount(count int) {
	m.AuthorizationCodesActive.Set(float64(count))
}
