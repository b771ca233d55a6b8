package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
// Durable streams carry recorded searches; aggregation snapshots go over
// plain NATS since they are ephemeral UI state.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// snapshotEnvelope is the wire form of an aggregation snapshot.
type snapshotEnvelope struct {
	PropertyID string                   `json:"property_id"`
	Snapshot   domain.AggregationResult `json:"snapshot"`
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "SEARCH_RECORDS",
			Subjects:  []string{"ijar.search.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSearchRecorded(ctx context.Context, rec *domain.SearchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("ijar.search.recorded."+rec.UserID, data)
	return err
}

func (p *Publisher) PublishAggregationSnapshot(ctx context.Context, propertyID string, snapshot domain.AggregationResult) error {
	data, err := json.Marshal(snapshotEnvelope{PropertyID: propertyID, Snapshot: snapshot})
	if err != nil {
		return err
	}
	return p.conn.Publish("ijar.commute."+propertyID, data)
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("ijar.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
