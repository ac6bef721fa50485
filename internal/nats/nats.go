package nats

import (
	"context"
	"log/slog"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"spokd/internal/config"
)

const (
	appName = "spokd"

	// StreamName carries persisted domain events for the fan-out worker.
	StreamName = "SPOKD"
	// EventSubjectPrefix is the subject family of domain events,
	// spokd.event.<type>.
	EventSubjectPrefix = "spokd.event."
	// ConsumerName is the durable pull consumer of the fan-out worker.
	ConsumerName = "fanout"

	// DeliverSubjectPrefix addresses realtime deliveries to a single user,
	// spokd.deliver.<userID>. Plain core NATS, no persistence.
	DeliverSubjectPrefix = "spokd.deliver."
	// EchoSubjectPrefix broadcasts spok activity to sessions currently
	// watching that spok, spokd.echo.<spokID>.
	EchoSubjectPrefix = "spokd.echo."

	// CodesBucket keeps phone confirmation codes; entries expire with the
	// bucket TTL.
	CodesBucket = "spokd-codes"

	codeTTL = 10 * time.Minute
)

type NATS struct {
	Logger *slog.Logger
	Config *config.Config

	Conn *libnats.Conn
	JS   jetstream.JetStream
	KV   jetstream.KeyValue
}

func (n *NATS) Init(ctx context.Context) error {
	n.Logger = n.Logger.With("component", "nats")

	nc, err := libnats.Connect(n.Config.NATSURL)
	if err != nil {
		return err
	}
	n.Conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}
	n.JS = js

	if n.Config.NATSInit {
		if err := n.initNATS(ctx); err != nil {
			return err
		}
	}

	kv, err := js.KeyValue(ctx, CodesBucket)
	if err != nil {
		return err
	}
	n.KV = kv

	return nil
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.Conn.RTT()
	return err
}

func (n *NATS) Shutdown(context.Context) error {
	return n.Conn.Drain()
}

func (n *NATS) initNATS(ctx context.Context) error {
	n.Logger.Info("Initializing NATS")

	stream, err := n.JS.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{EventSubjectPrefix + ">"},
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return err
	}
	n.Logger.Info("Stream created or updated", "name", StreamName)

	_, err = stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		FilterSubject: EventSubjectPrefix + ">",
	})
	if err != nil {
		return err
	}
	n.Logger.Info("Consumer created or updated", "name", ConsumerName)

	_, err = n.JS.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: CodesBucket,
		TTL:    codeTTL,
	})
	if err != nil {
		return err
	}
	n.Logger.Info("KeyValue created or updated", "name", CodesBucket)

	return nil
}
