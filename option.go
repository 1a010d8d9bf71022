package yieldagent

import (
	"time"

	"github.com/vitwit/yieldagent/logger"
	"github.com/vitwit/yieldagent/metrics"
	"github.com/vitwit/yieldagent/verification"
	"github.com/vitwit/yieldagent/yields"
)

type Option func(*Agent)

func WithLogger(l logger.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(a *Agent) {
		if r != nil {
			a.metrics = r
		}
	}
}

// WithVerifier replaces the acceptance predicate.
func WithVerifier(v verification.Verifier) Option {
	return func(a *Agent) {
		a.verifier = v
	}
}

func WithCatalog(c *yields.Catalog) Option {
	return func(a *Agent) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithClock sets the source of the lastUpdated timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		if now != nil {
			a.now = now
		}
	}
}
