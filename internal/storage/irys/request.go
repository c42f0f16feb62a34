// internal/storage/irys/request.go
package irys

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const defaultBackoffBase = time.Second

// Executor runs network operations with per-attempt timeouts and exponential
// backoff between failed attempts. Every request gets a monotonically
// increasing id scoped to the owning executor, so concurrent calls stay
// distinguishable in the logs.
type Executor struct {
	logger      *zap.Logger
	timeout     time.Duration
	retries     int
	backoffBase time.Duration
	nextID      atomic.Uint64
}

func NewExecutor(logger *zap.Logger, timeout time.Duration, retries int) *Executor {
	return &Executor{
		logger:      logger.Named("request-executor"),
		timeout:     timeout,
		retries:     retries,
		backoffBase: defaultBackoffBase,
	}
}

// execute wraps op in up to ex.retries attempts. Each attempt races op
// against the per-attempt timeout; a timeout surfaces as ErrTimedOut rather
// than being swallowed. The delay before the k-th re-attempt is
// 2^(k-1) * backoffBase. On exhaustion the last observed error is returned
// unchanged so callers can match on the root cause.
func execute[T any](ctx context.Context, ex *Executor, name string, op func(ctx context.Context) (T, error)) (T, error) {
	requestID := ex.nextID.Add(1)
	log := ex.logger.With(
		zap.Uint64("request_id", requestID),
		zap.String("request", name),
	)
	log.Debug("Executing request")

	attempt := 0
	operation := func() (T, error) {
		attempt++

		attemptCtx, cancel := context.WithTimeout(ctx, ex.timeout)
		defer cancel()

		result, err := op(attemptCtx)
		if err != nil {
			// Distinguish our per-attempt timeout from a caller-side cancel.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = fmt.Errorf("%w after %s", ErrTimedOut, ex.timeout)
			}
			log.Warn("Request attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", ex.retries),
				zap.Error(err))
			var zero T
			return zero, err
		}

		log.Debug("Request completed", zap.Int("attempt", attempt), zap.Any("result", result))
		return result, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ex.backoffBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 10 * time.Minute

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(ex.retries)))
	if err != nil {
		log.Error("Request failed after all attempts",
			zap.Int("attempts", attempt),
			zap.Error(err))
		var zero T
		return zero, err
	}
	return result, nil
}
