package worker

import (
	"time"

	"github.com/okian/puckpicks/internal/domain/series"
	"github.com/okian/puckpicks/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withLocks shares per-slug locks between the workers of a pool.
func withLocks(l *slugLocks) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.locks = l
		}
	}
}

// WithRules sets the rules used to classify progression.
func WithRules(rules series.Rules) Option {
	return func(w *InMemoryWorker) {
		w.rules = rules
	}
}

// WithClock sets the clock used to classify progression.
func WithClock(now func() time.Time) Option {
	return func(w *InMemoryWorker) {
		if now != nil {
			w.now = now
		}
	}
}
