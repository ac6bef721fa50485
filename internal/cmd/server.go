package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"spokd/internal/api"
	"spokd/internal/cmd/flags"
	"spokd/internal/core"
	"spokd/internal/feed"
	"spokd/internal/graph"
	"spokd/internal/groups"
	"spokd/internal/identity"
	"spokd/internal/messaging"
	"spokd/internal/metrics"
	"spokd/internal/nats"
	"spokd/internal/persistence"
	accountsdb "spokd/internal/persistence/accounts"
	commentsdb "spokd/internal/persistence/comments"
	graphdb "spokd/internal/persistence/graph"
	groupsdb "spokd/internal/persistence/groups"
	notificationsdb "spokd/internal/persistence/notifications"
	pollsdb "spokd/internal/persistence/polls"
	spoksdb "spokd/internal/persistence/spoks"
	subscriptionsdb "spokd/internal/persistence/subscriptions"
	talksdb "spokd/internal/persistence/talks"
	"spokd/internal/presence"
	"spokd/internal/search"
	"spokd/internal/sessions"
	"spokd/internal/spok"
)

var serverCmd = &cli.Command{
	Name:  "server",
	Usage: "Run the API server with live websocket sessions",
	Flags: []cli.Flag{
		flags.ListenAddr,
		flags.MetricsAddr,
		flags.DatabaseURL,
		flags.NATSUrl,
		flags.InitNATS,
		flags.TokenSecret,
		flags.SMSGatewayURL,
		flags.SMSGatewayKey,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			repositories(),
			nats.Provide(),

			pal.Provide[core.EventPublisher](&feed.Publisher{}),
			pal.Provide[core.DeliveryPublisher](&feed.Deliverer{}),
			pal.Provide[core.Presence](&presence.Registry{}),
			pal.Provide[core.SMSGateway](&identity.SMS{}),

			pal.Provide(&identity.Tokens{}),
			pal.Provide(&identity.Service{}),
			pal.Provide(&spok.MentionScanner{}),
			pal.Provide(&spok.Engine{}),
			pal.Provide(&graph.Service{}),
			pal.Provide(&groups.Service{}),
			pal.Provide(&messaging.Service{}),
			pal.Provide(&search.Service{}),

			pal.Provide(&sessions.Hub{}),
			pal.Provide(&api.Server{}),
			pal.Provide(&metrics.HTTPServer{}),
		)
	},
}

func repositories() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide(&persistence.DB{}),
		pal.Provide[core.AccountRepository](&accountsdb.Repository{}),
		pal.Provide[core.SpokRepository](&spoksdb.Repository{}),
		pal.Provide[core.CommentRepository](&commentsdb.Repository{}),
		pal.Provide[core.PollRepository](&pollsdb.Repository{}),
		pal.Provide[core.GraphRepository](&graphdb.Repository{}),
		pal.Provide[core.GroupRepository](&groupsdb.Repository{}),
		pal.Provide[core.NotificationRepository](&notificationsdb.Repository{}),
		pal.Provide[core.SubscriptionRepository](&subscriptionsdb.Repository{}),
		pal.Provide[core.TalkRepository](&talksdb.Repository{}),
	)
}
