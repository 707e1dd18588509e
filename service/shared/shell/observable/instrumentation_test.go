package observable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/observable"
	"github.com/AntonStoeckl/library-loans-go/testutil/spies"
)

func Test_WrapCommand_UsesAllCollectors(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)
	tracing := spies.NewTracingCollectorSpy(true)
	logger := spies.NewContextualLoggerSpy(true)
	inst := observable.Instrumentation{Metrics: metrics, Tracing: tracing, ContextualLogger: logger}

	wrapped, err := observable.WrapCommand[testCommand, string](&commandHandlerFake{result: "ok"}, inst)
	require.NoError(t, err)

	// act
	_, _, err = wrapped.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.CommandHandlerCallsMetric))
	assert.Equal(t, 1, tracing.CountSpanRecordsForName(shell.SpanNameCommandHandle))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandCompleted))
}

func Test_WrapQuery_SkipsNilCollectors(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)

	wrapped, err := observable.WrapQuery[testQuery, []int](queryHandlerFake{result: []int{1}}, observable.Instrumentation{Metrics: metrics})
	require.NoError(t, err)

	// act
	result, err := wrapped.Handle(context.Background(), testQuery{})

	// assert
	require.NoError(t, err, "Should work with only metrics configured")
	assert.Equal(t, []int{1}, result)
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.QueryHandlerCallsMetric))
}
