package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	libnats "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spokd/internal/core"
	"spokd/internal/nats"
)

var eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spokd_events_published_total",
	Help: "The total number of domain events published to the fan-out stream",
}, []string{"type", "status"})

// Publisher writes domain events to the fan-out stream. The event ID doubles
// as the JetStream dedup key, so a retried publish cannot produce a second
// fan-out.
type Publisher struct {
	Logger *slog.Logger
	NATS   *nats.NATS
}

func (p *Publisher) Init(context.Context) error {
	p.Logger = p.Logger.With("component", "feed.Publisher")
	return nil
}

func (p *Publisher) Publish(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		eventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	msg := &libnats.Msg{
		Subject: nats.EventSubjectPrefix + string(event.Type),
		Data:    payload,
		Header:  libnats.Header{"Nats-Msg-Id": []string{event.ID}},
	}

	_, err = p.NATS.JS.PublishMsg(ctx, msg)
	if err != nil {
		eventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	eventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}
