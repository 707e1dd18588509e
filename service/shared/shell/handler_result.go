package shell

import (
	"context"
	"time"
)

// HandlerResult carries the execution metadata of a command handler run.
type HandlerResult struct {
	// RetryAttempts is the total number of attempts made (1 for no retries).
	RetryAttempts int

	// TotalRetryDelay is the time spent in backoff delays, excluding execution time.
	TotalRetryDelay time.Duration

	// LastErrorType is "none" on success, otherwise the type of the final error
	// ("concurrency_conflict", "context_canceled", "context_deadline_exceeded", "other").
	LastErrorType string

	// RetriesExhausted is true when all attempts failed with a retryable error.
	RetriesExhausted bool
}

// NewResult builds a HandlerResult from the metrics of a retry run.
func NewResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// HandleWithRetry runs execute under RetryWithExponentialBackoff and packs the retry metadata into a HandlerResult.
// On error the zero value of R is returned.
func HandleWithRetry[R any](
	ctx context.Context,
	execute func(ctx context.Context) (R, error),
	options ...RetryOption,
) (R, HandlerResult, error) {
	var result R

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = execute(retryCtx)

		return execErr
	}, options...)

	if err != nil {
		var zero R
		return zero, NewResult(retryMetrics), err
	}

	return result, NewResult(retryMetrics), nil
}
