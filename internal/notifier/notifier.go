// Package notifier is the fan-out worker: it consumes persisted domain
// events from the stream, materializes notifications for every recipient and
// pushes realtime deliveries toward connected sessions.
package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"spokd/internal/core"
	"spokd/internal/nats"
	"spokd/pkg/retry"
)

const fetchBatchSize = 32

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spokd_fanout_events_total",
		Help: "The total number of fan-out events processed",
	}, []string{"type", "status"})

	notificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spokd_notifications_created_total",
		Help: "The total number of notifications persisted by the fan-out worker",
	})
)

type Notifier struct {
	Logger *slog.Logger
	NATS   *nats.NATS

	Notifications core.NotificationRepository
	Subs          core.SubscriptionRepository
	Deliverer     core.DeliveryPublisher
}

func (n *Notifier) Init(context.Context) error {
	n.Logger = n.Logger.With("component", "notifier")
	return nil
}

// Run drains the durable consumer until the context is cancelled. Messages
// are acked only after the notifications are persisted, so a crashed worker
// replays; the publisher-side dedup header absorbs the replay upstream and
// the notification insert tolerates it downstream.
func (n *Notifier) Run(ctx context.Context) error {
	cons, err := n.NATS.JS.Consumer(ctx, nats.StreamName, nats.ConsumerName)
	if err != nil {
		return err
	}

	return pips.New[jetstream.Msg, any]().
		Then(apply.Map(func(ctx context.Context, msg jetstream.Msg) (any, error) {
			if err := n.handle(ctx, msg); err != nil {
				n.Logger.Error("event handling failed", "error", err)
				return nil, msg.Nak()
			}
			return nil, msg.Ack()
		})).
		Run(ctx, fetch(ctx, cons)).
		Wait(ctx)
}

func fetch(ctx context.Context, cons jetstream.Consumer) <-chan pips.D[jetstream.Msg] {
	ch := make(chan pips.D[jetstream.Msg])

	go func() {
		defer close(ch)

		for {
			if ctx.Err() != nil {
				return
			}

			batch, err := cons.Fetch(fetchBatchSize, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				continue
			}

			for msg := range batch.Messages() {
				select {
				case <-ctx.Done():
					return
				case ch <- pips.NewD(msg):
				}
			}
		}
	}()

	return ch
}

func (n *Notifier) handle(ctx context.Context, msg jetstream.Msg) error {
	var event core.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		eventsProcessed.WithLabelValues("unknown", "error").Inc()
		return err
	}

	notifications, err := n.materialize(ctx, event)
	if err != nil {
		eventsProcessed.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	if len(notifications) > 0 {
		if err := n.Notifications.Create(ctx, notifications); err != nil {
			eventsProcessed.WithLabelValues(string(event.Type), "error").Inc()
			return err
		}
		notificationsCreated.Add(float64(len(notifications)))
	}

	n.deliver(ctx, event, notifications)

	eventsProcessed.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

// materialize turns an event into its notification rows. Spok activity goes
// to the spok's feed subscribers, mentions and graph counterparties come in
// through TargetIDs, and the actor never notifies themselves.
func (n *Notifier) materialize(ctx context.Context, event core.Event) ([]core.Notification, error) {
	switch event.Type {
	case core.EventSpokRespoked, core.EventCommentAdded, core.EventSpokCreated:
		return n.spokNotifications(ctx, event)

	case core.EventFollowerAdded:
		return targeted(event, core.NotifFollower), nil

	case core.EventFriendMade:
		return targeted(event, core.NotifFriend), nil

	case core.EventRegistration:
		return targeted(event, core.NotifRegistration), nil

	default:
		// No rows for the rest: counter activity echoes to spok viewers,
		// removal events go straight to their targets' sessions.
		return nil, nil
	}
}

func (n *Notifier) spokNotifications(ctx context.Context, event core.Event) ([]core.Notification, error) {
	baseType := core.NotifRespoked
	if event.Type == core.EventCommentAdded {
		baseType = core.NotifComment
	}

	mentioned := lo.SliceToMap(event.TargetIDs, func(id int64) (int64, struct{}) {
		return id, struct{}{}
	})

	var notifications []core.Notification
	for id := range mentioned {
		if id == event.ActorID {
			continue
		}
		notifications = append(notifications, notification(event, id, core.NotifMention))
	}

	// The creator's own spok.created event has no audience yet beyond
	// mentions.
	if event.Type == core.EventSpokCreated {
		return notifications, nil
	}

	subscribers, err := n.Subs.SubscriberIDs(ctx, event.SpokID)
	if err != nil {
		return nil, err
	}

	for _, id := range subscribers {
		if id == event.ActorID {
			continue
		}
		if _, ok := mentioned[id]; ok {
			continue
		}
		notifications = append(notifications, notification(event, id, baseType))
	}

	return notifications, nil
}

func (n *Notifier) deliver(ctx context.Context, event core.Event, notifications []core.Notification) {
	policy := retry.Policy{Attempts: 3, Delay: 100 * time.Millisecond}

	for i := range notifications {
		notif := notifications[i]
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			return n.Deliverer.Deliver(ctx, core.Delivery{
				Kind:         core.DeliverToUser,
				UserID:       notif.RecipientID,
				Event:        event,
				Notification: &notif,
			})
		})
		if err != nil {
			n.Logger.Error("user delivery failed", "recipient", notif.RecipientID, "error", err)
		}
	}

	if event.SpokID == 0 {
		// Removal events warrant no rows, yet both sides' live sessions
		// still hear about them.
		for _, id := range lo.Without(event.TargetIDs, lo.Map(notifications, func(n core.Notification, _ int) int64 {
			return n.RecipientID
		})...) {
			recipientID := id
			err := retry.Do(ctx, policy, func(ctx context.Context) error {
				return n.Deliverer.Deliver(ctx, core.Delivery{
					Kind:   core.DeliverToUser,
					UserID: recipientID,
					Event:  event,
				})
			})
			if err != nil {
				n.Logger.Error("user delivery failed", "recipient", recipientID, "error", err)
			}
		}
		return
	}

	// Sessions currently viewing the spok get the raw event for live counter
	// refresh, whether or not they subscribe.
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		return n.Deliverer.Deliver(ctx, core.Delivery{
			Kind:   core.DeliverToSpok,
			SpokID: event.SpokID,
			Event:  event,
		})
	})
	if err != nil {
		n.Logger.Error("spok echo failed", "spok", event.SpokID, "error", err)
	}
}

func targeted(event core.Event, typ core.NotificationType) []core.Notification {
	return lo.FilterMap(event.TargetIDs, func(id int64, _ int) (core.Notification, bool) {
		if id == event.ActorID {
			return core.Notification{}, false
		}
		return notification(event, id, typ), true
	})
}

func notification(event core.Event, recipientID int64, typ core.NotificationType) core.Notification {
	return core.Notification{
		RecipientID: recipientID,
		Type:        typ,
		EmitterID:   event.ActorID,
		SpokID:      event.SpokID,
		RelatedID:   event.CommentID,
	}
}
