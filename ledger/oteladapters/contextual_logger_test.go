package oteladapters_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/library-loans-go/ledger/oteladapters"
)

func Test_SlogBridgeLogger_EmitsRecordsWithTraceContext(t *testing.T) {
	// arrange
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tracerProvider := sdktrace.NewTracerProvider()
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "borrow")
	defer span.End()

	logger := oteladapters.NewSlogBridgeLogger("library-loans", provider)

	// act
	logger.InfoContext(ctx, "book borrowed", "loan_id", int64(11))

	// assert
	assert.NotNil(t, logger.Slog())
	records := exporter.exported()
	require.Len(t, records, 1, "Should export exactly one record")
	assert.Equal(t, "book borrowed", records[0].Body().AsString(), "Should carry the message as body")
	assert.Equal(t, span.SpanContext().TraceID(), records[0].TraceID(), "Should carry the trace ID of the context")
	assert.Equal(t, 1, records[0].AttributesLen(), "Should carry the attribute")
}

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}

	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error { return nil }

func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) exported() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]sdklog.Record(nil), e.records...)
}
