package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	metricBorrowDuration       = "ledger_borrow_duration_seconds"
	metricReturnDuration       = "ledger_return_duration_seconds"
	metricQueryDuration        = "ledger_query_duration_seconds"
	metricWriteDuration        = "ledger_write_duration_seconds"
	metricBookUnavailable      = "ledger_book_unavailable_total"
	metricConcurrencyConflicts = "ledger_concurrency_conflicts_total"
	metricDatabaseErrors       = "ledger_database_errors_total"

	spanNameBorrow = "ledger.borrow"
	spanNameReturn = "ledger.return"
	spanNameQuery  = "ledger.query"
	spanNameWrite  = "ledger.write"

	spanAttrOperation  = "operation"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"
	spanAttrRowCount   = "row_count"
	spanAttrBookID     = "book_id"
	spanAttrLoanID     = "loan_id"
	spanAttrUserID     = "user_id"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	statusSuccess = "success"
	statusError   = "error"

	operationBorrow = "borrow"
	operationReturn = "return"
)

// operationObserver bundles the span, metrics, and timing of one Store operation.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	metric    string
	span      ledger.SpanContext
	start     time.Time
}

// observeBorrow, observeReturn, observeQuery, and observeWrite start an operationObserver for the matching span and metric.
func (s *Store) observeBorrow(ctx context.Context, req ledger.BorrowRequest) (*operationObserver, context.Context) {
	return s.observe(ctx, operationBorrow, spanNameBorrow, metricBorrowDuration, map[string]string{
		spanAttrBookID: formatID(req.BookID),
		spanAttrUserID: formatID(req.UserID),
	})
}

func (s *Store) observeReturn(ctx context.Context, loanID int64) (*operationObserver, context.Context) {
	return s.observe(ctx, operationReturn, spanNameReturn, metricReturnDuration, map[string]string{
		spanAttrLoanID: formatID(loanID),
	})
}

func (s *Store) observeQuery(ctx context.Context, operation string) (*operationObserver, context.Context) {
	return s.observe(ctx, operation, spanNameQuery, metricQueryDuration, nil)
}

func (s *Store) observeWrite(ctx context.Context, operation string) (*operationObserver, context.Context) {
	return s.observe(ctx, operation, spanNameWrite, metricWriteDuration, nil)
}

func (s *Store) observe(
	ctx context.Context,
	operation string,
	spanName string,
	metric string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	o := &operationObserver{s: s, operation: operation, metric: metric, start: time.Now()}

	if s.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		for key, value := range attrs {
			spanAttrs[key] = value
		}

		ctx, o.span = s.tracingCollector.StartSpan(ctx, spanName, spanAttrs)
	}

	o.ctx = ctx

	return o, ctx
}

// finishSuccess records the duration and closes the span. rowCount < 0 omits the row count attribute.
func (o *operationObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)
	o.s.recordDuration(o.ctx, o.metric, duration, map[string]string{
		labelOperation: o.operation,
		labelStatus:    statusSuccess,
	})

	if o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDurationMS: formatMilliseconds(duration)}
	if rowCount >= 0 {
		attrs[spanAttrRowCount] = strconv.Itoa(rowCount)
	}

	o.s.tracingCollector.FinishSpan(o.span, statusSuccess, attrs)
}

// finishError records the failure on all configured channels and returns err unchanged.
func (o *operationObserver) finishError(err error) error {
	duration := time.Since(o.start)
	errType := errorType(err)

	o.s.recordDuration(o.ctx, o.metric, duration, map[string]string{
		labelOperation: o.operation,
		labelStatus:    statusError,
	})

	switch {
	case errors.Is(err, ledger.ErrBookNotAvailable):
		o.s.incrementCounter(o.ctx, metricBookUnavailable, map[string]string{labelOperation: o.operation})

	case errors.Is(err, ledger.ErrConcurrencyConflict):
		o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{labelOperation: o.operation})
		o.s.logOperation(o.ctx, logMsgConcurrencyFailed, labelOperation, o.operation)
	}

	if isDatabaseError(err) {
		o.s.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
			labelOperation: o.operation,
			labelStatus:    statusError,
			labelErrorType: errType,
		})
	}

	if o.span != nil {
		o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{
			spanAttrErrorType:  errType,
			spanAttrDurationMS: formatMilliseconds(duration),
		})
	}

	return err
}

// recordDuration uses the context-aware method if the collector supports it.
func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// === Logging ===
// The contextual logger wins over the plain logger so that records are not written twice.

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 2, 64)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
