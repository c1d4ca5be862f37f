package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Authorization codes - noop implementations
func (n *NoopMetrics) RecordAuthorizationCodeIssued(success bool)    {}
func (n *NoopMetrics) RecordAuthorizationCodeConsumed(result string) {}

// Token Operations - noop implementations
func (n *NoopMetrics) RecordTokenIssued(
	tokenType, grantType string,
	generationTime time.Duration,
) {
}

func (n *NoopMetrics) RecordTokenRefresh(success bool)                             {}
func (n *NoopMetrics) RecordTokenValidation(result string, duration time.Duration) {}

// Authentication - noop implementations
func (n *NoopMetrics) RecordLogin(success bool)                   {}
func (n *NoopMetrics) RecordLogout(sessionDuration time.Duration) {}
func (n *NoopMetrics) RecordConsent(decision string)              {}

// Session Management - noop implementations
func (n *NoopMetrics) RecordSessionCreated()                                      {}
func (n *NoopMetrics) RecordSessionExpired(reason string, duration time.Duration) {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetActiveSessionsCount(count int)           {}
func (n *NoopMetrics) SetActiveAuthorizationCodesCount(count int) {}
