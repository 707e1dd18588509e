package shell

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Command is implemented by all write use cases. CommandType labels logs, metrics, and spans.
type Command interface {
	CommandType() string
}

// Query is implemented by all read use cases. QueryType labels logs, metrics, and spans.
type Query interface {
	QueryType() string
}

// CommandHandler processes a command and returns its result together with the retry metadata.
// Implementations focus on the use case, the observable.CommandWrapper adds instrumentation.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// QueryHandler processes a query and returns its result.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Aliases for the ledger observability interfaces, so feature slices only import shell.

type MetricsCollector = ledger.MetricsCollector

type ContextualMetricsCollector = ledger.ContextualMetricsCollector

type TracingCollector = ledger.TracingCollector

type SpanContext = ledger.SpanContext

type ContextualLogger = ledger.ContextualLogger

type Logger = ledger.Logger
