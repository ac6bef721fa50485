package messaging_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/messaging"
)

type fixture struct {
	service *messaging.Service

	talks     *coretest.Talks
	deliverer *coretest.Deliverer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts := coretest.NewAccounts()
	accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
	accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})

	f := &fixture{
		talks:     coretest.NewTalks(),
		deliverer: &coretest.Deliverer{},
	}
	f.service = &messaging.Service{
		Logger:    slog.Default(),
		Talks:     f.talks,
		Accounts:  accounts,
		Deliverer: f.deliverer,
	}
	require.NoError(t, f.service.Init(context.Background()))
	return f
}

func TestService_Send(t *testing.T) {
	t.Parallel()

	t.Run("first contact creates the talk and delivers to both sides", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()

		message, err := f.service.Send(ctx, 1, 2, "hello")
		require.NoError(t, err)
		require.NotZero(t, message.ID)

		talks, err := f.service.ListTalks(ctx, 1, core.Keyset{}, 10)
		require.NoError(t, err)
		require.Len(t, talks, 1)

		deliveries := f.deliverer.All()
		require.Len(t, deliveries, 2)
		require.ElementsMatch(t, []int64{1, 2},
			[]int64{deliveries[0].UserID, deliveries[1].UserID})
		require.Equal(t, core.EventMessageAdded, deliveries[0].Event.Type)
	})

	t.Run("both directions share one talk", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()

		_, err := f.service.Send(ctx, 1, 2, "hello")
		require.NoError(t, err)
		_, err = f.service.Send(ctx, 2, 1, "hi back")
		require.NoError(t, err)

		talks, err := f.service.ListTalks(ctx, 2, core.Keyset{}, 10)
		require.NoError(t, err)
		require.Len(t, talks, 1)

		messages, err := f.service.Messages(ctx, talks[0].ID, 1, core.Keyset{}, 20)
		require.NoError(t, err)
		require.Len(t, messages, 2)
	})

	t.Run("self-messaging is refused", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.service.Send(context.Background(), 1, 1, "hello me")
		require.ErrorIs(t, err, core.ErrNotAllowed)
	})

	t.Run("unknown peer", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.service.Send(context.Background(), 1, 99, "hello")
		require.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("bounds the text", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()

		_, err := f.service.Send(ctx, 1, 2, "")
		require.ErrorIs(t, err, core.ErrEmptyMessage)

		_, err = f.service.Send(ctx, 1, 2, strings.Repeat("a", 1201))
		require.ErrorIs(t, err, core.ErrTextTooLong)
	})
}

func TestService_TalkAccess(t *testing.T) {
	t.Parallel()

	t.Run("outsiders cannot read a talk", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		_, err := f.service.Send(ctx, 1, 2, "hello")
		require.NoError(t, err)

		talks, err := f.service.ListTalks(ctx, 1, core.Keyset{}, 10)
		require.NoError(t, err)

		_, err = f.service.Messages(ctx, talks[0].ID, 3, core.Keyset{}, 20)
		require.ErrorIs(t, err, core.ErrTalkNotFound)
	})

	t.Run("deleting a talk drops its messages", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		_, err := f.service.Send(ctx, 1, 2, "hello")
		require.NoError(t, err)

		talks, err := f.service.ListTalks(ctx, 1, core.Keyset{}, 10)
		require.NoError(t, err)

		require.ErrorIs(t, f.service.DeleteTalk(ctx, talks[0].ID, 3), core.ErrTalkNotFound)
		require.NoError(t, f.service.DeleteTalk(ctx, talks[0].ID, 2))

		talks, err = f.service.ListTalks(ctx, 1, core.Keyset{}, 10)
		require.NoError(t, err)
		require.Empty(t, talks)
	})
}

func TestService_RemoveMessage(t *testing.T) {
	t.Parallel()

	t.Run("author hides the message and both peers hear about it", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		message, err := f.service.Send(ctx, 1, 2, "typo")
		require.NoError(t, err)

		require.NoError(t, f.service.RemoveMessage(ctx, message.ID, 1))

		talks, err := f.service.ListTalks(ctx, 1, core.Keyset{}, 10)
		require.NoError(t, err)
		messages, err := f.service.Messages(ctx, talks[0].ID, 1, core.Keyset{}, 20)
		require.NoError(t, err)
		require.Empty(t, messages)

		var removals int
		for _, d := range f.deliverer.All() {
			if d.Event.Type == core.EventMessageRemoved {
				removals++
			}
		}
		require.Equal(t, 2, removals)
	})

	t.Run("author only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		ctx := context.Background()
		message, err := f.service.Send(ctx, 1, 2, "hello")
		require.NoError(t, err)

		require.ErrorIs(t, f.service.RemoveMessage(ctx, message.ID, 2), core.ErrNotAllowed)
	})
}
