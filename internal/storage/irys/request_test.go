package irys

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestExecutor(t *testing.T, timeout time.Duration, retries int) *Executor {
	ex := NewExecutor(zaptest.NewLogger(t), timeout, retries)
	ex.backoffBase = time.Millisecond
	return ex
}

func TestExecuteSucceedsAfterTransientFailures(t *testing.T) {
	ex := newTestExecutor(t, time.Second, 3)

	calls := 0
	result, err := execute(context.Background(), ex, "flaky", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteReturnsLastErrorUnchanged(t *testing.T) {
	ex := newTestExecutor(t, time.Second, 3)

	sentinel := errors.New("node exploded")
	calls := 0
	_, err := execute(context.Background(), ex, "doomed", func(ctx context.Context) (int, error) {
		calls++
		return 0, sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	// Callers pattern-match on the root cause, so the executor must not wrap.
	assert.ErrorIs(t, err, sentinel)
}

func TestExecutePerAttemptTimeout(t *testing.T) {
	ex := newTestExecutor(t, 10*time.Millisecond, 1)

	_, err := execute(context.Background(), ex, "slow", func(ctx context.Context) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return 42, nil
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestExecuteBackoffGrowsExponentially(t *testing.T) {
	ex := newTestExecutor(t, time.Second, 3)
	ex.backoffBase = 20 * time.Millisecond

	var stamps []time.Time
	_, err := execute(context.Background(), ex, "timed", func(ctx context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, errors.New("nope")
	})
	require.Error(t, err)
	require.Len(t, stamps, 3)

	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])

	assert.GreaterOrEqual(t, first, 20*time.Millisecond)
	assert.GreaterOrEqual(t, second, 40*time.Millisecond)
}

func TestExecuteAssignsMonotonicRequestIDs(t *testing.T) {
	ex := newTestExecutor(t, time.Second, 1)

	noop := func(ctx context.Context) (int, error) { return 0, nil }
	for i := 0; i < 5; i++ {
		_, err := execute(context.Background(), ex, "noop", noop)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(5), ex.nextID.Load())
}

func TestExecuteRespectsCallerCancellation(t *testing.T) {
	ex := newTestExecutor(t, time.Second, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(ctx, ex, "cancelled", func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	require.Error(t, err)
}
