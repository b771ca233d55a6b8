package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeSearchRecorded(ctx context.Context, handler func(ctx context.Context, rec *domain.SearchRecord) error) error {
	sub, err := s.js.Subscribe("ijar.search.recorded.>", func(msg *nats.Msg) {
		var rec domain.SearchRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &rec); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("search-record-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeAggregationSnapshots(ctx context.Context, handler func(ctx context.Context, propertyID string, snapshot domain.AggregationResult) error) error {
	sub, err := s.conn.Subscribe("ijar.commute.>", func(msg *nats.Msg) {
		var env snapshotEnvelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return
		}
		_ = handler(ctx, env.PropertyID, env.Snapshot)
	})
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
