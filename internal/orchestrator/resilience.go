package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// NewBreaker returns a circuit breaker for one named backend call
// (specialist, reviewer, gate runner, integration runner), tripping after 5
// consecutive failures and probing again after 30s.
func NewBreaker[T any](name string, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit breaker state change", "backend", name, "from", from, "to", to)
		},
	})
}

// callWithRetry runs fn through breaker, retrying on failure with bounded
// exponential backoff up to maxAttempts. A transient failure is retried; a
// sustained one trips the breaker. The final error is returned unwrapped;
// each caller wraps it with its own error code.
func callWithRetry[T any](ctx context.Context, breaker *gobreaker.CircuitBreaker[T], maxAttempts uint64, fn func() (T, error)) (T, error) {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts), ctx)

	var result T
	op := func() error {
		r, err := breaker.Execute(fn)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
