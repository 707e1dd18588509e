package commands

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-loans-go/ledger/oteladapters"
	"github.com/AntonStoeckl/library-loans-go/ledger/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/observable"
)

// observability bundles what the store and the handlers get when telemetry is on.
type observability struct {
	instrumentation observable.Instrumentation
	storeOptions    []postgresengine.Option
	shutdown        func() error
}

// newObservability installs the OpenTelemetry providers and builds the collectors on top of them.
// With observability disabled it only hands the plain logger to the store.
func newObservability(ctx context.Context, cfg config.Config, logger *slog.Logger) (observability, error) {
	if !cfg.ObservabilityEnabled {
		return observability{
			instrumentation: observable.Instrumentation{Logger: logger},
			storeOptions:    []postgresengine.Option{postgresengine.WithLogger(logger)},
			shutdown:        func() error { return nil },
		}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.OTELEndpoint, Version)
	if err != nil {
		return observability{}, err
	}

	tracer := otel.Tracer(config.ServiceName)
	meter := otel.Meter(config.ServiceName)

	metricsCollector := oteladapters.NewMetricsCollector(meter)
	tracingCollector := oteladapters.NewTracingCollector(tracer)

	contextualLogger := oteladapters.NewSlogBridgeLogger(config.ServiceName, providers.LoggerProvider)

	return observability{
		instrumentation: observable.Instrumentation{
			Metrics:          metricsCollector,
			Tracing:          tracingCollector,
			ContextualLogger: contextualLogger,
		},
		storeOptions: []postgresengine.Option{
			postgresengine.WithContextualLogger(contextualLogger),
			postgresengine.WithMetrics(metricsCollector),
			postgresengine.WithTracing(tracingCollector),
		},
		shutdown: providers.Shutdown,
	}, nil
}
