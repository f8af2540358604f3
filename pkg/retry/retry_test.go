package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func TestDoWithResult(t *testing.T) {
	fast := ConstantBackoff(time.Millisecond)

	t.Run("FirstAttempt", func(t *testing.T) {
		var calls int
		v, err := DoWithResult(t.Context(), RetryConfig{MaxAttempts: 3, Backoff: fast},
			func() (int, error) {
				calls++
				return 7, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		v, err := DoWithResult(t.Context(), RetryConfig{MaxAttempts: 5, Backoff: fast},
			func() (string, error) {
				calls++
				if calls < 3 {
					return "", errTemporary
				}
				return "ok", nil
			})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("AttemptsExhausted", func(t *testing.T) {
		var calls int
		_, err := DoWithResult(t.Context(), RetryConfig{MaxAttempts: 4, Backoff: fast},
			func() (int, error) {
				calls++
				return 0, errTemporary
			})
		require.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 4, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		permanent := errors.New("permanent")
		var calls int
		_, err := DoWithResult(t.Context(), RetryConfig{
			MaxAttempts: 4,
			Backoff:     fast,
			ShouldRetry: func(err error) bool { return !errors.Is(err, permanent) },
		}, func() (int, error) {
			calls++
			return 0, permanent
		})
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("ZeroAttemptsRunsOnce", func(t *testing.T) {
		var calls int
		err := Do(t.Context(), RetryConfig{}, func() error {
			calls++
			return errTemporary
		})
		require.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 1, calls)
	})

	t.Run("CancelledBeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := Do(ctx, RetryConfig{MaxAttempts: 3}, func() error {
			t.Error("unexpected call")
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CancelledWhileWaiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		err := Do(ctx, RetryConfig{MaxAttempts: 3, Backoff: ConstantBackoff(time.Hour)},
			func() error {
				cancel()
				return errTemporary
			})
		require.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(10 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		base := time.Duration(1<<attempt) * 10 * time.Millisecond
		d := b(attempt)
		assert.Greater(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}

	assert.Zero(t, ExponentialBackoff(0)(3))
}
