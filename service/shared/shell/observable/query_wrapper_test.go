package observable_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/observable"
	"github.com/AntonStoeckl/library-loans-go/testutil/spies"
)

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type queryHandlerFake struct {
	result []int
	err    error
}

func (h queryHandlerFake) Handle(_ context.Context, _ testQuery) ([]int, error) {
	return h.result, h.err
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := spies.NewContextualMetricsCollectorSpy(true)
	tracing := spies.NewTracingCollectorSpy(true)
	logger := spies.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[testQuery, []int](
		queryHandlerFake{result: []int{3, 2, 1}},
		observable.WithQueryMetrics[testQuery, []int](metrics),
		observable.WithQueryTracing[testQuery, []int](tracing),
		observable.WithQueryContextualLogging[testQuery, []int](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, result)
	assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert(), "Should record the duration")
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).Assert())
	assert.True(t, tracing.HasSpanRecordForName(shell.SpanNameQueryHandle).WithStatus(shell.StatusSuccess).Assert())
	assert.True(t, logger.HasInfoLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_NotFoundIsRejected(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)
	logger := spies.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[testQuery, []int](
		queryHandlerFake{err: ledger.ErrLoanNotFound},
		observable.WithQueryMetrics[testQuery, []int](metrics),
		observable.WithQueryContextualLogging[testQuery, []int](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(shell.StatusRejected).Assert())
	assert.True(t, logger.HasInfoLog(shell.LogMsgQueryRejected))
}

func Test_QueryWrapper_Handle_CountsCanceledQueries(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewQueryWrapper[testQuery, []int](
		queryHandlerFake{err: context.Canceled},
		observable.WithQueryMetrics[testQuery, []int](metrics),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCanceledMetric).Assert())
}

func newSlogLogger(handler slog.Handler) *slog.Logger {
	return slog.New(handler)
}
