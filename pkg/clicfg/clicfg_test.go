package clicfg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"spokd/pkg/clicfg"
)

type flagConfig struct {
	Name    string        `flag:"name"`
	Count   int           `flag:"count"`
	Limit   uint          `flag:"limit"`
	Verbose bool          `flag:"verbose"`
	Timeout time.Duration `flag:"timeout"`
	Ignored string
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("binds tagged fields from flags", func(t *testing.T) {
		t.Parallel()

		var cfg flagConfig
		cmd := &cli.Command{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name"},
				&cli.IntFlag{Name: "count"},
				&cli.UintFlag{Name: "limit"},
				&cli.BoolFlag{Name: "verbose"},
				&cli.DurationFlag{Name: "timeout"},
			},
			Action: func(_ context.Context, c *cli.Command) error {
				return clicfg.ParseFlags(c, &cfg)
			},
		}

		err := cmd.Run(context.Background(), []string{
			"test",
			"--name", "worker",
			"--count", "42",
			"--limit", "7",
			"--verbose",
			"--timeout", "30s",
		})
		require.NoError(t, err)

		require.Equal(t, "worker", cfg.Name)
		require.Equal(t, 42, cfg.Count)
		require.EqualValues(t, 7, cfg.Limit)
		require.True(t, cfg.Verbose)
		require.Equal(t, 30*time.Second, cfg.Timeout)
		require.Empty(t, cfg.Ignored)
	})

	t.Run("rejects non-pointer targets", func(t *testing.T) {
		t.Parallel()

		err := clicfg.ParseFlags(&cli.Command{}, flagConfig{})
		require.ErrorIs(t, err, clicfg.ErrCannotParseFlags)
	})
}
