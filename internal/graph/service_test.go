package graph_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/graph"
)

type fixture struct {
	service *graph.Service

	accounts  *coretest.Accounts
	graph     *coretest.Graph
	publisher *coretest.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:  coretest.NewAccounts(),
		graph:     coretest.NewGraph(),
		publisher: &coretest.Publisher{},
	}
	f.accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
	f.accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})
	f.accounts.Add(core.Account{ID: 3, Phone: "+33600000003", Nickname: "carol"})

	f.service = &graph.Service{
		Logger:    slog.Default(),
		Accounts:  f.accounts,
		Graph:     f.graph,
		Publisher: f.publisher,
	}
	require.NoError(t, f.service.Init(context.Background()))
	return f
}

func TestService_Follow(t *testing.T) {
	t.Parallel()

	t.Run("emits a follower event", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.service.Follow(context.Background(), 1, 2))

		events := f.publisher.OfType(core.EventFollowerAdded)
		require.Len(t, events, 1)
		require.EqualValues(t, 1, events[0].ActorID)
		require.Equal(t, []int64{2}, events[0].TargetIDs)

		require.Empty(t, f.publisher.OfType(core.EventFriendMade))
	})

	t.Run("closing the pair makes friends exactly once", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 1, 2))
		require.NoError(t, f.service.Follow(ctx, 2, 1))

		events := f.publisher.OfType(core.EventFriendMade)
		require.Len(t, events, 1)
		require.ElementsMatch(t, []int64{1, 2}, events[0].TargetIDs)
	})

	t.Run("re-following is silent", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 1, 2))
		require.NoError(t, f.service.Follow(ctx, 1, 2))

		require.Len(t, f.publisher.OfType(core.EventFollowerAdded), 1)
	})

	t.Run("self-follow is refused", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.ErrorIs(t, f.service.Follow(context.Background(), 1, 1), core.ErrNotAllowed)
	})

	t.Run("followee must exist", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.ErrorIs(t, f.service.Follow(context.Background(), 1, 99), core.ErrUserNotFound)
	})
}

func TestService_Unfollow(t *testing.T) {
	t.Parallel()

	t.Run("breaking a mutual pair loses the friend", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 1, 2))
		require.NoError(t, f.service.Follow(ctx, 2, 1))

		require.NoError(t, f.service.Unfollow(ctx, 1, 2))

		require.Len(t, f.publisher.OfType(core.EventFollowerGone), 1)
		events := f.publisher.OfType(core.EventFriendLost)
		require.Len(t, events, 1)
		require.ElementsMatch(t, []int64{1, 2}, events[0].TargetIDs)
	})

	t.Run("one-way unfollow only drops the follower", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 1, 2))

		require.NoError(t, f.service.Unfollow(ctx, 1, 2))

		require.Len(t, f.publisher.OfType(core.EventFollowerGone), 1)
		require.Empty(t, f.publisher.OfType(core.EventFriendLost))
	})

	t.Run("unfollowing a stranger is silent", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.service.Unfollow(context.Background(), 1, 2))
		require.Empty(t, f.publisher.OfType(core.EventFollowerGone))
	})
}

func TestService_Listings(t *testing.T) {
	t.Parallel()

	t.Run("followers resolve to accounts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 2, 1))
		require.NoError(t, f.service.Follow(ctx, 3, 1))

		followers, err := f.service.Followers(ctx, 2, 1, core.Keyset{}, 10)
		require.NoError(t, err)
		require.Len(t, followers, 2)
	})

	t.Run("private followers are owner-only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		account, err := f.accounts.Get(ctx, 1)
		require.NoError(t, err)
		account.FollowersPrivate = true
		require.NoError(t, f.accounts.Update(ctx, account))

		_, err = f.service.Followers(ctx, 2, 1, core.Keyset{}, 10)
		require.ErrorIs(t, err, core.ErrFollowersPrivate)

		_, err = f.service.Followers(ctx, 1, 1, core.Keyset{}, 10)
		require.NoError(t, err)
	})

	t.Run("private followings are owner-only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		account, err := f.accounts.Get(ctx, 1)
		require.NoError(t, err)
		account.FollowingsPrivate = true
		require.NoError(t, f.accounts.Update(ctx, account))

		_, err = f.service.Followings(ctx, 3, 1, core.Keyset{}, 10)
		require.ErrorIs(t, err, core.ErrFollowingsPrivate)
	})

	t.Run("friends are the mutual follows", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.Follow(ctx, 1, 2))
		require.NoError(t, f.service.Follow(ctx, 2, 1))
		require.NoError(t, f.service.Follow(ctx, 1, 3))

		ids, err := f.service.FriendIDs(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []int64{2}, ids)
	})
}
