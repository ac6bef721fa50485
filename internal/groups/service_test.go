package groups_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/groups"
)

func newService(t *testing.T) (*groups.Service, *coretest.Accounts) {
	t.Helper()

	accounts := coretest.NewAccounts()
	accounts.Add(core.Account{ID: 1, Phone: "+33600000001", Nickname: "alice"})
	accounts.Add(core.Account{ID: 2, Phone: "+33600000002", Nickname: "bob"})

	service := &groups.Service{
		Logger:   slog.Default(),
		Groups:   coretest.NewGroups(),
		Accounts: accounts,
	}
	require.NoError(t, service.Init(context.Background()))
	return service, accounts
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("create, rename, delete", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "family")
		require.NoError(t, err)
		require.NotZero(t, group.ID)

		renamed, err := service.Rename(ctx, group.ID, 1, "close family")
		require.NoError(t, err)
		require.Equal(t, "close family", renamed.Title)

		require.NoError(t, service.Delete(ctx, group.ID, 1))

		owned, err := service.ByOwner(ctx, 1)
		require.NoError(t, err)
		require.Empty(t, owned)
	})

	t.Run("other owners' groups look absent", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "family")
		require.NoError(t, err)

		_, err = service.Rename(ctx, group.ID, 2, "mine now")
		require.ErrorIs(t, err, core.ErrGroupNotFound)

		require.ErrorIs(t, service.Delete(ctx, group.ID, 2), core.ErrGroupNotFound)

		_, err = service.Members(ctx, group.ID, 2)
		require.ErrorIs(t, err, core.ErrGroupNotFound)
	})

	t.Run("title bounds", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		_, err := service.Create(ctx, 1, "")
		require.ErrorIs(t, err, core.ErrTitleTooShort)

		_, err = service.Create(ctx, 1, strings.Repeat("a", 121))
		require.ErrorIs(t, err, core.ErrTitleTooLong)
	})
}

func TestService_Members(t *testing.T) {
	t.Parallel()

	t.Run("registered phones become user members", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "crew")
		require.NoError(t, err)

		err = service.AddMembers(ctx, group.ID, 1, nil, []string{"+33600000002", "+33699999999"})
		require.NoError(t, err)

		members, err := service.Members(ctx, group.ID, 1)
		require.NoError(t, err)
		require.Len(t, members, 2)

		userIDs := lo.FilterMap(members, func(m core.GroupMember, _ int) (int64, bool) {
			return m.UserID, m.UserID > 0
		})
		require.Equal(t, []int64{2}, userIDs)

		phones := lo.FilterMap(members, func(m core.GroupMember, _ int) (string, bool) {
			return m.ContactPhone, m.ContactPhone != ""
		})
		require.Equal(t, []string{"+33699999999"}, phones)
	})

	t.Run("duplicate user ids collapse", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "crew")
		require.NoError(t, err)

		err = service.AddMembers(ctx, group.ID, 1, []int64{2, 2}, []string{"+33600000002"})
		require.NoError(t, err)

		members, err := service.Members(ctx, group.ID, 1)
		require.NoError(t, err)
		require.Len(t, members, 1)
	})

	t.Run("unknown user ids are rejected", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "crew")
		require.NoError(t, err)

		err = service.AddMembers(ctx, group.ID, 1, []int64{99}, nil)
		require.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("remove by id and by phone", func(t *testing.T) {
		t.Parallel()

		service, _ := newService(t)
		ctx := context.Background()

		group, err := service.Create(ctx, 1, "crew")
		require.NoError(t, err)
		require.NoError(t, service.AddMembers(ctx, group.ID, 1, []int64{2}, []string{"+33699999999"}))

		err = service.RemoveMembers(ctx, group.ID, 1, []int64{2}, []string{"+33699999999"})
		require.NoError(t, err)

		members, err := service.Members(ctx, group.ID, 1)
		require.NoError(t, err)
		require.Empty(t, members)
	})
}
