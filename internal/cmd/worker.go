package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"spokd/internal/cmd/flags"
	"spokd/internal/core"
	"spokd/internal/feed"
	"spokd/internal/metrics"
	"spokd/internal/nats"
	"spokd/internal/notifier"
	"spokd/internal/persistence"
	notificationsdb "spokd/internal/persistence/notifications"
	subscriptionsdb "spokd/internal/persistence/subscriptions"
)

var workerCmd = &cli.Command{
	Name:  "worker",
	Usage: "Run the fan-out worker: consume domain events, write notifications, push deliveries",
	Flags: []cli.Flag{
		flags.MetricsAddr,
		flags.DatabaseURL,
		flags.NATSUrl,
		flags.InitNATS,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&persistence.DB{}),
			pal.Provide[core.NotificationRepository](&notificationsdb.Repository{}),
			pal.Provide[core.SubscriptionRepository](&subscriptionsdb.Repository{}),
			nats.Provide(),
			pal.Provide[core.DeliveryPublisher](&feed.Deliverer{}),
			pal.Provide(&notifier.Notifier{}),
			pal.Provide(&metrics.HTTPServer{}),
		)
	},
}
