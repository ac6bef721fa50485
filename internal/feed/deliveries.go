package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spokd/internal/core"
	"spokd/internal/nats"
)

var deliveriesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spokd_deliveries_published_total",
	Help: "The total number of deliveries pushed toward live sessions",
}, []string{"kind"})

// Deliverer pushes rendered deliveries over core NATS subjects. Deliveries
// address live sessions only, so there is no stream behind them: a user with
// no connected session reads the notification from the database later.
type Deliverer struct {
	Logger *slog.Logger
	NATS   *nats.NATS
}

func (d *Deliverer) Init(context.Context) error {
	d.Logger = d.Logger.With("component", "feed.Deliverer")
	return nil
}

func (d *Deliverer) Deliver(_ context.Context, delivery core.Delivery) error {
	payload, err := json.Marshal(delivery)
	if err != nil {
		return err
	}

	var subject string
	switch delivery.Kind {
	case core.DeliverToUser:
		subject = nats.DeliverSubjectPrefix + strconv.FormatInt(delivery.UserID, 10)
	case core.DeliverToSpok:
		subject = nats.EchoSubjectPrefix + strconv.FormatInt(delivery.SpokID, 10)
	default:
		return core.ErrNotAllowed
	}

	if err := d.NATS.Conn.Publish(subject, payload); err != nil {
		return err
	}

	deliveriesPublished.WithLabelValues(string(delivery.Kind)).Inc()
	return nil
}
