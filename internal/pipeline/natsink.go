package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes build events as JSON messages on a NATS subject, so
// external consumers (dashboards, notifiers) can follow builds without
// polling.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to a NATS server and returns a sink publishing on
// subject.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("docpipe"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSink{conn: conn, subject: subject}, nil
}

// Publish sends one event. The context is accepted for interface symmetry;
// NATS publishes are fire-and-forget.
func (s *NATSSink) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.conn.Publish(s.subject, data)
}

// Close drains and closes the NATS connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
