package spok_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/spok"
)

func TestEngine_Create(t *testing.T) {
	t.Parallel()

	t.Run("spreads pending instances to followers", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		f.follow(t, 3, 1)

		created := f.createText(t, 1, spok.CreateParams{})

		spk := f.getSpok(t, created.ID)
		require.EqualValues(t, 0, spk.NbSpoked)
		require.EqualValues(t, 2, spk.NbScoped)
		require.EqualValues(t, 0, spk.NbComments)

		require.Equal(t, core.InstanceRespoked, f.instanceOf(t, spk.ID, 1).State)
		require.Equal(t, core.InstancePending, f.instanceOf(t, spk.ID, 2).State)
		require.Equal(t, core.InstancePending, f.instanceOf(t, spk.ID, 3).State)

		subscribed, err := f.subs.IsSubscribed(context.Background(), 1, spk.ID)
		require.NoError(t, err)
		require.True(t, subscribed)

		require.Len(t, f.publisher.OfType(core.EventSpokCreated), 1)
	})

	t.Run("group publication reaches registered members only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.groups.Create(context.Background(), &core.Group{OwnerID: 1, Title: "crew"}))
		require.NoError(t, f.groups.AddMembers(context.Background(), 1, []core.GroupMember{
			{GroupID: 1, UserID: 2},
			{GroupID: 1, ContactPhone: "+33600000001"},
		}))

		created := f.createText(t, 1, spok.CreateParams{GroupID: 1})

		require.EqualValues(t, 1, f.getSpok(t, created.ID).NbScoped)
		require.Equal(t, core.InstancePending, f.instanceOf(t, created.ID, 2).State)
	})

	t.Run("someone else's group is invisible", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.groups.Create(context.Background(), &core.Group{OwnerID: 2, Title: "crew"}))

		_, err := f.engine.Create(context.Background(), 1, spok.CreateParams{
			Content: textContent("hello"),
			GroupID: 1,
		})
		require.ErrorIs(t, err, core.ErrGroupNotFound)
	})

	t.Run("rejects invalid content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, err := f.engine.Create(context.Background(), 1, spok.CreateParams{
			Content: core.Content{Type: core.ContentPicture},
		})
		require.ErrorIs(t, err, core.ErrMediaMissing)
	})
}

func TestEngine_Respoke(t *testing.T) {
	t.Parallel()

	t.Run("claims the pending instance", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})

		geo := core.Geo{Latitude: 48.85, Longitude: 2.35}
		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{
			Text:       "me too",
			Visibility: core.VisibilityRestricted,
			Geo:        geo,
		})
		require.NoError(t, err)

		instance := f.instanceOf(t, created.ID, 2)
		require.Equal(t, core.InstanceRespoked, instance.State)
		require.Equal(t, "me too", instance.Text)
		require.Equal(t, core.VisibilityRestricted, instance.Visibility)
		require.Equal(t, geo, instance.Geo)
		require.False(t, instance.RespokedAt.IsZero())

		spk := f.getSpok(t, created.ID)
		require.EqualValues(t, 1, spk.NbSpoked)
		require.EqualValues(t, 1, spk.NbScoped)

		subscribed, err := f.subs.IsSubscribed(context.Background(), 2, created.ID)
		require.NoError(t, err)
		require.True(t, subscribed)
	})

	t.Run("out-of-band respoke creates a fresh counted instance", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})

		_, err := f.engine.Respoke(context.Background(), created.ID, 5, spok.RespokeParams{})
		require.NoError(t, err)

		spk := f.getSpok(t, created.ID)
		require.EqualValues(t, 1, spk.NbSpoked)
		require.EqualValues(t, 1, spk.NbScoped)
	})

	t.Run("respoking twice fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})

		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.NoError(t, err)

		_, err = f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.ErrorIs(t, err, core.ErrAlreadyRespoked)
	})

	t.Run("disabled spok is unavailable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})
		require.NoError(t, f.engine.Disable(context.Background(), created.ID, 1))

		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.ErrorIs(t, err, core.ErrSpokUnavailable)
	})

	t.Run("respoke spreads further", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		f.follow(t, 3, 2)
		created := f.createText(t, 1, spok.CreateParams{})

		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.NoError(t, err)

		instance := f.instanceOf(t, created.ID, 3)
		require.Equal(t, core.InstancePending, instance.State)
		require.EqualValues(t, 2, instance.FromID)
		require.EqualValues(t, 2, f.getSpok(t, created.ID).NbScoped)
	})

	t.Run("counts travelled distance from the origin instance", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{
			Geo: core.Geo{Latitude: 48.8566, Longitude: 2.3522},
		})

		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{
			Geo: core.Geo{Latitude: 48.8666, Longitude: 2.3522},
		})
		require.NoError(t, err)

		// 0.01 degrees of latitude is roughly 1112 meters.
		require.InDelta(t, 1112, f.getSpok(t, created.ID).Distance, 10)
	})
}

func TestEngine_Polls(t *testing.T) {
	t.Parallel()

	t.Run("respoke requires every question answered", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{Content: pollContent()})

		_, err := f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.ErrorIs(t, err, core.ErrUnansweredQuestions)

		questions, err := f.polls.Questions(context.Background(), created.ID)
		require.NoError(t, err)
		require.Len(t, questions, 2)

		for _, question := range questions {
			answers, err := f.polls.Answers(context.Background(), question.ID)
			require.NoError(t, err)
			require.NoError(t, f.engine.AnswerPoll(context.Background(), question.ID, answers[0].ID, 2))
		}

		_, err = f.engine.Respoke(context.Background(), created.ID, 2, spok.RespokeParams{})
		require.NoError(t, err)
	})

	t.Run("answer must belong to the question", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{Content: pollContent()})

		questions, err := f.polls.Questions(context.Background(), created.ID)
		require.NoError(t, err)

		otherAnswers, err := f.polls.Answers(context.Background(), questions[1].ID)
		require.NoError(t, err)

		err = f.engine.AnswerPoll(context.Background(), questions[0].ID, otherAnswers[0].ID, 2)
		require.ErrorIs(t, err, core.ErrInvalidAnswer)
	})
}

func TestEngine_Unspoke(t *testing.T) {
	t.Parallel()

	t.Run("declines a pending instance", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})

		require.NoError(t, f.engine.Unspoke(context.Background(), created.ID, 2))

		require.Equal(t, core.InstanceUnspoked, f.instanceOf(t, created.ID, 2).State)
		require.EqualValues(t, 0, f.getSpok(t, created.ID).NbScoped)
	})

	t.Run("only pending instances can be unspoked", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})

		err := f.engine.Unspoke(context.Background(), created.ID, 1)
		require.ErrorIs(t, err, core.ErrUnspoke)
	})
}

func TestEngine_Disable(t *testing.T) {
	t.Parallel()

	t.Run("owner disables the spok and its instances", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})

		require.NoError(t, f.engine.Disable(context.Background(), created.ID, 1))

		require.True(t, f.getSpok(t, created.ID).Disabled)
		require.Equal(t, core.InstanceDisabled, f.instanceOf(t, created.ID, 1).State)
		require.Equal(t, core.InstanceDisabled, f.instanceOf(t, created.ID, 2).State)
	})

	t.Run("owner only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})

		err := f.engine.Disable(context.Background(), created.ID, 2)
		require.ErrorIs(t, err, core.ErrNotAllowed)
	})
}

func TestEngine_Remove(t *testing.T) {
	t.Parallel()

	t.Run("removes a counted instance and shrinks the scope", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})
		instance := f.instanceOf(t, created.ID, 2)

		require.NoError(t, f.engine.Remove(context.Background(), instance.ID, 2))

		require.Equal(t, core.InstanceRemoved, f.instanceOf(t, created.ID, 2).State)
		require.EqualValues(t, 0, f.getSpok(t, created.ID).NbScoped)
	})

	t.Run("removing again is a no-op", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})
		instance := f.instanceOf(t, created.ID, 2)

		require.NoError(t, f.engine.Remove(context.Background(), instance.ID, 2))
		require.NoError(t, f.engine.Remove(context.Background(), instance.ID, 2))

		require.EqualValues(t, 0, f.getSpok(t, created.ID).NbScoped)
	})

	t.Run("instance owner only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.follow(t, 2, 1)
		created := f.createText(t, 1, spok.CreateParams{})
		instance := f.instanceOf(t, created.ID, 2)

		err := f.engine.Remove(context.Background(), instance.ID, 3)
		require.ErrorIs(t, err, core.ErrNotAllowed)
	})
}

func TestEngine_Comments(t *testing.T) {
	t.Parallel()

	t.Run("comment bumps the counter and subscribes the author", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})

		comment, err := f.engine.Comment(context.Background(), created.ID, 2, "nice one")
		require.NoError(t, err)
		require.NotZero(t, comment.ID)

		require.EqualValues(t, 1, f.getSpok(t, created.ID).NbComments)

		subscribed, err := f.subs.IsSubscribed(context.Background(), 2, created.ID)
		require.NoError(t, err)
		require.True(t, subscribed)
	})

	t.Run("update is author-only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})
		comment, err := f.engine.Comment(context.Background(), created.ID, 2, "nice one")
		require.NoError(t, err)

		_, err = f.engine.UpdateComment(context.Background(), comment.ID, 3, "edited")
		require.ErrorIs(t, err, core.ErrNotAllowed)

		updated, err := f.engine.UpdateComment(context.Background(), comment.ID, 2, "edited")
		require.NoError(t, err)
		require.Equal(t, "edited", updated.Text)
	})

	t.Run("spok creator can remove a stranger's comment", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})
		comment, err := f.engine.Comment(context.Background(), created.ID, 2, "nice one")
		require.NoError(t, err)

		require.ErrorIs(t, f.engine.RemoveComment(context.Background(), comment.ID, 3), core.ErrNotAllowed)
		require.NoError(t, f.engine.RemoveComment(context.Background(), comment.ID, 1))

		require.EqualValues(t, 0, f.getSpok(t, created.ID).NbComments)
	})

	t.Run("bounds the comment text", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		created := f.createText(t, 1, spok.CreateParams{})

		_, err := f.engine.Comment(context.Background(), created.ID, 2, "")
		require.ErrorIs(t, err, core.ErrTextTooShort)

		_, err = f.engine.Comment(context.Background(), created.ID, 2, strings.Repeat("a", 1201))
		require.ErrorIs(t, err, core.ErrTextTooLong)
	})
}

func TestEngine_SubscribeSwitch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	created := f.createText(t, 1, spok.CreateParams{})

	subscribed, err := f.engine.SubscribeSwitch(context.Background(), created.ID, 2)
	require.NoError(t, err)
	require.True(t, subscribed)

	subscribed, err = f.engine.SubscribeSwitch(context.Background(), created.ID, 2)
	require.NoError(t, err)
	require.False(t, subscribed)
}
