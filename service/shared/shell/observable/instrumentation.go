package observable

import (
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
)

// Instrumentation bundles the collectors every wrapper of a service shares.
// Nil members are skipped.
type Instrumentation struct {
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
	ContextualLogger shell.ContextualLogger
	Logger           shell.Logger
}

// WrapCommand wraps core with all collectors of inst.
func WrapCommand[C shell.Command, R any](
	core shell.CommandHandler[C, R],
	inst Instrumentation,
) (shell.CommandHandler[C, R], error) {
	opts := make([]CommandOption[C, R], 0, 4)

	if inst.Metrics != nil {
		opts = append(opts, WithCommandMetrics[C, R](inst.Metrics))
	}

	if inst.Tracing != nil {
		opts = append(opts, WithCommandTracing[C, R](inst.Tracing))
	}

	if inst.ContextualLogger != nil {
		opts = append(opts, WithCommandContextualLogging[C, R](inst.ContextualLogger))
	}

	if inst.Logger != nil {
		opts = append(opts, WithCommandLogging[C, R](inst.Logger))
	}

	return NewCommandWrapper(core, opts...)
}

// WrapQuery wraps core with all collectors of inst.
func WrapQuery[Q shell.Query, R any](
	core shell.QueryHandler[Q, R],
	inst Instrumentation,
) (shell.QueryHandler[Q, R], error) {
	opts := make([]QueryOption[Q, R], 0, 4)

	if inst.Metrics != nil {
		opts = append(opts, WithQueryMetrics[Q, R](inst.Metrics))
	}

	if inst.Tracing != nil {
		opts = append(opts, WithQueryTracing[Q, R](inst.Tracing))
	}

	if inst.ContextualLogger != nil {
		opts = append(opts, WithQueryContextualLogging[Q, R](inst.ContextualLogger))
	}

	if inst.Logger != nil {
		opts = append(opts, WithQueryLogging[Q, R](inst.Logger))
	}

	return NewQueryWrapper(core, opts...)
}
