package spok_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
	"spokd/internal/core/coretest"
	"spokd/internal/spok"
)

type fixture struct {
	engine *spok.Engine

	accounts  *coretest.Accounts
	spoks     *coretest.Spoks
	comments  *coretest.Comments
	polls     *coretest.Polls
	subs      *coretest.Subscriptions
	groups    *coretest.Groups
	graph     *coretest.Graph
	publisher *coretest.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:  coretest.NewAccounts(),
		spoks:     coretest.NewSpoks(),
		comments:  coretest.NewComments(),
		polls:     coretest.NewPolls(),
		subs:      coretest.NewSubscriptions(),
		groups:    coretest.NewGroups(),
		graph:     coretest.NewGraph(),
		publisher: &coretest.Publisher{},
	}
	f.engine = &spok.Engine{
		Logger:    slog.Default(),
		Spoks:     f.spoks,
		Comments:  f.comments,
		Polls:     f.polls,
		Subs:      f.subs,
		Groups:    f.groups,
		Graph:     f.graph,
		Publisher: f.publisher,
		Mentions:  &spok.MentionScanner{Accounts: f.accounts, Graph: f.graph},
	}
	require.NoError(t, f.engine.Init(context.Background()))
	return f
}

// follow wires followerID -> followeeID in the graph fake.
func (f *fixture) follow(t *testing.T, followerID, followeeID int64) {
	t.Helper()

	created, err := f.graph.Follow(context.Background(), followerID, followeeID)
	require.NoError(t, err)
	require.True(t, created)
}

func (f *fixture) createText(t *testing.T, creatorID int64, params spok.CreateParams) *core.Spok {
	t.Helper()

	if params.Content.Type == "" {
		params.Content = textContent("hello there")
	}
	created, err := f.engine.Create(context.Background(), creatorID, params)
	require.NoError(t, err)
	return created
}

func (f *fixture) getSpok(t *testing.T, id int64) *core.Spok {
	t.Helper()

	found, err := f.spoks.Get(context.Background(), id)
	require.NoError(t, err)
	return found
}

func (f *fixture) instanceOf(t *testing.T, spokID, spokerID int64) *core.SpokInstance {
	t.Helper()

	instance, err := f.spoks.InstanceOf(context.Background(), spokID, spokerID)
	require.NoError(t, err)
	return instance
}

func textContent(text string) core.Content {
	return core.Content{Type: core.ContentRawText, Text: text}
}

func pollContent() core.Content {
	return core.Content{
		Type: core.ContentPoll,
		Poll: &core.PollContent{
			Title: "lunch",
			Questions: []core.PollQuestionSpec{
				{
					Text: "where", Rank: 1,
					Answers: []core.PollAnswerSpec{
						{Text: "here", Rank: 1},
						{Text: "there", Rank: 2},
					},
				},
				{
					Text: "when", Rank: 2,
					Answers: []core.PollAnswerSpec{
						{Text: "noon", Rank: 1},
						{Text: "later", Rank: 2},
					},
				},
			},
		},
	}
}
