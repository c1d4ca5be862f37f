package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authorization codes
	RecordAuthorizationCodeIssued(success bool)
	RecordAuthorizationCodeConsumed(result string)

	// Token Operations
	RecordTokenIssued(tokenType, grantType string, generationTime time.Duration)
	RecordTokenRefresh(success bool)
	RecordTokenValidation(result string, duration time.Duration)

	// Authentication
	RecordLogin(success bool)
	RecordLogout(sessionDuration time.Duration)
	RecordConsent(decision string)

	// Session Management
	RecordSessionCreated()
	RecordSessionExpired(reason string, duration time.Duration)

	// Gauge Setters (for periodic updates)
	SetActiveSessionsCount(count int)
	SetActiveAuthorizationCodesCount(count int)
}
