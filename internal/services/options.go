package services

import (
	"time"

	"github.com/notdulain/OAuth-Learning/internal/core"
	"github.com/notdulain/OAuth-Learning/internal/metrics"

	"go.uber.org/zap"
)

// Option configures the stateful services (sessions, codes, tokens).
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics core.Recorder
	logger  *zap.SugaredLogger
}

func newOptions(opts []Option) *options {
	o := &options{
		now:     time.Now,
		metrics: metrics.NewNoopMetrics(),
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock overrides the time source. Pass the same clock to the backing
// cache.MemoryStore so both agree on expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(m core.Recorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
