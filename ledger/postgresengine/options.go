package postgresengine

import (
	"time"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Borrows, returns, rejected borrows (production-safe)
// Warn level: Non-critical issues like cleanup failures or capped restocks
// Error level: Critical failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over the plain logger.
// With tracing enabled, its records carry the trace and span IDs of the operation.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithLoanPeriod sets the period added to the borrow date when a borrow does not request a due date.
func WithLoanPeriod(period time.Duration) Option {
	return func(s *Store) error {
		if period <= 0 {
			return ledger.ErrInvalidLoanPeriod
		}

		s.loanPeriod = period

		return nil
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) error {
		if clock == nil {
			return ledger.ErrNilClock
		}

		s.clock = clock

		return nil
	}
}
