package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"spokd/internal/cmd/flags"
	"spokd/internal/metrics"
	"spokd/internal/persistence"
)

var metricsCmd = &cli.Command{
	Name:  "metrics-server",
	Usage: "Run the standalone metrics collector and ops endpoint",
	Flags: []cli.Flag{
		flags.MetricsAddr,
		flags.DatabaseURL,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&persistence.DB{}),
			pal.Provide(&metrics.Collector{}),
			pal.Provide(&metrics.HTTPServer{}),
		)
	},
}
