package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/pkg/retry"
)

var errBoom = errors.New("boom")

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(t.Context(), retry.Policy{Attempts: 3}, func(context.Context) error {
			calls++
			if calls < 3 {
				return errBoom
			}
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		t.Parallel()

		err := retry.Do(t.Context(), retry.Policy{Attempts: 2}, func(context.Context) error {
			return errBoom
		})

		require.ErrorIs(t, err, errBoom)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		policy := retry.Policy{
			Attempts:    5,
			ShouldRetry: func(error) bool { return false },
		}
		err := retry.Do(t.Context(), policy, func(context.Context) error {
			calls++
			return errBoom
		})

		require.ErrorIs(t, err, errBoom)
		require.Equal(t, 1, calls)
	})
}
