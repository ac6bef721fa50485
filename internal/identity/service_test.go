package identity_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spokd/internal/config"
	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/identity"
)

const testPhone = "+33612345678"

type fixture struct {
	service *identity.Service

	accounts  *coretest.Accounts
	codes     *coretest.Codes
	sms       *coretest.SMS
	publisher *coretest.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens := &identity.Tokens{Config: &config.Config{TokenSecret: "test-secret"}}
	require.NoError(t, tokens.Init(context.Background()))

	f := &fixture{
		accounts:  coretest.NewAccounts(),
		codes:     coretest.NewCodes(),
		sms:       coretest.NewSMS(),
		publisher: &coretest.Publisher{},
	}
	f.service = &identity.Service{
		Logger:    slog.Default(),
		Accounts:  f.accounts,
		Codes:     f.codes,
		SMS:       f.sms,
		Tokens:    tokens,
		Publisher: f.publisher,
	}
	require.NoError(t, f.service.Init(context.Background()))
	return f
}

// register walks the full three-step flow and returns the new account.
func (f *fixture) register(t *testing.T, phone, nickname string) *identity.Registration {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.service.RegisterPhone(ctx, phone))

	code := f.sms.LastCode(phone)
	require.NoError(t, f.service.ConfirmCode(ctx, phone, code))

	registration, err := f.service.CompleteRegistration(ctx, identity.RegistrationParams{
		Phone:    phone,
		Code:     code,
		Nickname: nickname,
		Gender:   "other",
	})
	require.NoError(t, err)
	return registration
}

func TestService_Registration(t *testing.T) {
	t.Parallel()

	t.Run("full flow issues a token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registration := f.register(t, testPhone, "alice")

		require.NotZero(t, registration.Account.ID)
		require.Equal(t, core.AccountActive, registration.Account.Status)
		require.NotEmpty(t, registration.Token)

		userID, err := f.service.Tokens.Verify(registration.Token)
		require.NoError(t, err)
		require.Equal(t, registration.Account.ID, userID)
	})

	t.Run("used phone cannot register again", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.register(t, testPhone, "alice")

		err := f.service.RegisterPhone(context.Background(), testPhone)
		require.ErrorIs(t, err, core.ErrPhoneTaken)
	})

	t.Run("malformed phone", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.ErrorIs(t, f.service.RegisterPhone(context.Background(), "0612345678"), core.ErrInvalidPhone)
	})

	t.Run("wrong code", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.service.RegisterPhone(context.Background(), testPhone))

		err := f.service.ConfirmCode(context.Background(), testPhone, "000999")
		require.ErrorIs(t, err, core.ErrWrongCode)
	})

	t.Run("phone without an issued code", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		err := f.service.ConfirmCode(context.Background(), testPhone, "123456")
		require.ErrorIs(t, err, core.ErrWrongPhone)
	})

	t.Run("registered contacts are notified", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		contact := f.register(t, "+33698765432", "bob")

		ctx := context.Background()
		require.NoError(t, f.service.RegisterPhone(ctx, testPhone))
		code := f.sms.LastCode(testPhone)

		registration, err := f.service.CompleteRegistration(ctx, identity.RegistrationParams{
			Phone:         testPhone,
			Code:          code,
			Nickname:      "alice",
			Gender:        "female",
			ContactPhones: []string{"+33698765432", "+33600000000"},
		})
		require.NoError(t, err)
		require.Equal(t, []int64{contact.Account.ID}, registration.ContactIDs)

		events := f.publisher.OfType(core.EventRegistration)
		require.Len(t, events, 1)
		require.Equal(t, []int64{contact.Account.ID}, events[0].TargetIDs)
	})
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("login flow", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")

		ctx := context.Background()
		require.NoError(t, f.service.RequestLogin(ctx, testPhone))

		account, token, err := f.service.Authenticate(ctx, testPhone, f.sms.LastCode(testPhone))
		require.NoError(t, err)
		require.Equal(t, registered.Account.ID, account.ID)
		require.NotEmpty(t, token)
	})

	t.Run("codes are single-use", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.register(t, testPhone, "alice")

		ctx := context.Background()
		require.NoError(t, f.service.RequestLogin(ctx, testPhone))
		code := f.sms.LastCode(testPhone)

		_, _, err := f.service.Authenticate(ctx, testPhone, code)
		require.NoError(t, err)

		_, _, err = f.service.Authenticate(ctx, testPhone, code)
		require.ErrorIs(t, err, core.ErrWrongPhone)
	})

	t.Run("suspended account", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.accounts.Add(core.Account{Phone: testPhone, Nickname: "alice", Status: core.AccountSuspended})

		err := f.service.RequestLogin(context.Background(), testPhone)
		require.ErrorIs(t, err, core.ErrAccountSuspended)
	})

	t.Run("deleted account", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")
		require.NoError(t, f.service.Unregister(context.Background(), registered.Account.ID))

		err := f.service.RequestLogin(context.Background(), testPhone)
		require.ErrorIs(t, err, core.ErrAccountDeleted)
	})
}

func TestService_PhoneUpdate(t *testing.T) {
	t.Parallel()

	t.Run("rebinds after confirmation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")

		ctx := context.Background()
		newPhone := "+33611111111"
		require.NoError(t, f.service.RequestPhoneUpdate(ctx, registered.Account.ID, newPhone))

		code := f.sms.LastCode(newPhone)
		require.NoError(t, f.service.ConfirmPhoneUpdate(ctx, registered.Account.ID, newPhone, code))

		account, err := f.accounts.Get(ctx, registered.Account.ID)
		require.NoError(t, err)
		require.Equal(t, newPhone, account.Phone)
	})

	t.Run("new phone must be free", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")
		f.register(t, "+33611111111", "bob")

		err := f.service.RequestPhoneUpdate(context.Background(), registered.Account.ID, "+33611111111")
		require.ErrorIs(t, err, core.ErrPhoneTaken)
	})
}

func TestService_Profile(t *testing.T) {
	t.Parallel()

	t.Run("updates only the provided fields", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")

		account, err := f.service.UpdateProfile(context.Background(), registered.Account.ID, identity.ProfileParams{
			Location: "Paris",
		})
		require.NoError(t, err)
		require.Equal(t, "alice", account.Nickname)
		require.Equal(t, "Paris", account.Location)
	})

	t.Run("rejects a bad nickname", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")

		_, err := f.service.UpdateProfile(context.Background(), registered.Account.ID, identity.ProfileParams{
			Nickname: "x",
		})
		require.ErrorIs(t, err, core.ErrInvalidNickname)
	})

	t.Run("settings switch together", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		registered := f.register(t, testPhone, "alice")

		account, err := f.service.UpdateSettings(context.Background(), registered.Account.ID, identity.Settings{
			FollowersPrivate: true,
		})
		require.NoError(t, err)
		require.True(t, account.FollowersPrivate)
		require.False(t, account.FollowingsPrivate)
	})
}

func TestService_Support(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	registered := f.register(t, testPhone, "alice")
	ctx := context.Background()

	require.NoError(t, f.service.Support(ctx, registered.Account.ID, "my feed stopped refreshing"))
	require.ErrorIs(t, f.service.Support(ctx, registered.Account.ID, "short"), core.ErrInvalidSupportText)
	require.ErrorIs(t, f.service.Support(ctx, registered.Account.ID, strings.Repeat("a", 1201)), core.ErrInvalidSupportText)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tokens := &identity.Tokens{Config: &config.Config{TokenSecret: "test-secret"}}
	require.NoError(t, tokens.Init(context.Background()))

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		token, err := tokens.Issue(42, time.Now())
		require.NoError(t, err)

		userID, err := tokens.Verify(token)
		require.NoError(t, err)
		require.EqualValues(t, 42, userID)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		_, err := tokens.Verify("not.a.token")
		require.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		other := &identity.Tokens{Config: &config.Config{TokenSecret: "different"}}
		require.NoError(t, other.Init(context.Background()))

		token, err := other.Issue(42, time.Now())
		require.NoError(t, err)

		_, err = tokens.Verify(token)
		require.ErrorIs(t, err, core.ErrUnauthorized)
	})
}
