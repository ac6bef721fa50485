package spok_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/spok"
)

func newScanner(t *testing.T) (*spok.MentionScanner, *coretest.Accounts, *coretest.Graph) {
	t.Helper()

	accounts := coretest.NewAccounts()
	graph := coretest.NewGraph()
	return &spok.MentionScanner{Accounts: accounts, Graph: graph}, accounts, graph
}

func TestMentionScanner(t *testing.T) {
	t.Parallel()

	t.Run("resolves connected nicknames", func(t *testing.T) {
		t.Parallel()

		scanner, accounts, graph := newScanner(t)
		accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
		accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})
		_, err := graph.Follow(context.Background(), 2, 1)
		require.NoError(t, err)

		ids, err := scanner.Scan(context.Background(), 1, "hey @bob, seen this?")
		require.NoError(t, err)
		require.Equal(t, []int64{2}, ids)
	})

	t.Run("strangers are not resolved", func(t *testing.T) {
		t.Parallel()

		scanner, accounts, _ := newScanner(t)
		accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
		accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})

		ids, err := scanner.Scan(context.Background(), 1, "hey @bob")
		require.NoError(t, err)
		require.Empty(t, ids)
	})

	t.Run("unknown nicknames are skipped", func(t *testing.T) {
		t.Parallel()

		scanner, accounts, graph := newScanner(t)
		accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
		accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})
		_, err := graph.Follow(context.Background(), 1, 2)
		require.NoError(t, err)

		ids, err := scanner.Scan(context.Background(), 1, "@bob and @nobody")
		require.NoError(t, err)
		require.Equal(t, []int64{2}, ids)
	})

	t.Run("self-mentions and duplicates collapse", func(t *testing.T) {
		t.Parallel()

		scanner, accounts, graph := newScanner(t)
		accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
		accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})
		_, err := graph.Follow(context.Background(), 1, 2)
		require.NoError(t, err)

		ids, err := scanner.Scan(context.Background(), 1, "@alice @bob @bob")
		require.NoError(t, err)
		require.Equal(t, []int64{2}, ids)
	})

	t.Run("plain text mentions nobody", func(t *testing.T) {
		t.Parallel()

		scanner, _, _ := newScanner(t)

		ids, err := scanner.Scan(context.Background(), 1, "no handles here")
		require.NoError(t, err)
		require.Empty(t, ids)
	})
}
