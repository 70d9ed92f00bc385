package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own connection. durable names
// the consumer so that replicas of one service share deliveries.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeSimulationUpdated delivers every SimulationUpdated event to handler.
// Undecodable messages are terminated; handler errors are redelivered up to 3 times.
func (s *Subscriber) SubscribeSimulationUpdated(ctx context.Context, handler func(ctx context.Context, event *domain.SimulationUpdated) error) error {
	sub, err := s.js.Subscribe(SubjectUpdatedPrefix+"*", func(msg *nats.Msg) {
		var event domain.SimulationUpdated
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
