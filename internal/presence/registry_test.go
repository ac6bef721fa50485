package presence_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/presence"
)

func newRegistry(t *testing.T) *presence.Registry {
	t.Helper()

	registry := &presence.Registry{Logger: slog.Default()}
	require.NoError(t, registry.Init(context.Background()))
	return registry
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("watch and leave", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t)

		registry.Watch("s1", 1)
		registry.Watch("s2", 1)
		registry.Watch("s1", 2)

		require.ElementsMatch(t, []string{"s1", "s2"}, registry.Watchers(1))
		require.ElementsMatch(t, []string{"s1"}, registry.Watchers(2))

		registry.Leave("s1", 1)
		require.ElementsMatch(t, []string{"s2"}, registry.Watchers(1))
	})

	t.Run("drop clears every spok of the session", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t)

		registry.Watch("s1", 1)
		registry.Watch("s1", 2)
		registry.Watch("s2", 2)

		registry.Drop("s1")

		require.Empty(t, registry.Watchers(1))
		require.ElementsMatch(t, []string{"s2"}, registry.Watchers(2))
	})

	t.Run("watch is idempotent", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t)

		registry.Watch("s1", 1)
		registry.Watch("s1", 1)

		require.Len(t, registry.Watchers(1), 1)
	})

	t.Run("unknown spok has no watchers", func(t *testing.T) {
		t.Parallel()

		registry := newRegistry(t)
		require.Empty(t, registry.Watchers(42))
	})
}
