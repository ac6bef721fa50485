package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm/schema"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

var tableCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "spokd_table_estimated_count",
	Help: "Estimated record count for a table.",
}, []string{"table"})

// Collector periodically samples estimated row counts of the hot tables.
type Collector struct {
	Logger *slog.Logger
	DB     *persistence.DB
}

func (c *Collector) Init(context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	tables := []schema.Tabler{
		core.Account{},
		core.Spok{},
		core.SpokInstance{},
		core.Comment{},
		core.FollowEdge{},
		core.Notification{},
		core.Message{},
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Logger.Debug("Collecting metrics")
			for _, table := range tables {
				if err := c.collectTableEstimatedCount(table); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Collector) collectTableEstimatedCount(tabler schema.Tabler) error {
	count, err := c.DB.EstimatedCount(tabler.TableName())
	if err != nil {
		return err
	}
	tableCount.WithLabelValues(tabler.TableName()).Set(float64(count))
	return nil
}
