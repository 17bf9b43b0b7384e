package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Conn is the subset of *nats.Conn used to publish events.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON encoded events to NATS subjects.
type NATSPublisher struct {
	conn   Conn
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{nats.MaxReconnects(-1)}
	if name != "" {
		opts = append(opts, nats.Name(name))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// NewNATSPublisher wraps conn. A non-empty prefix is prepended to every subject.
func NewNATSPublisher(conn Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Publish encodes event and sends it on subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	if p.prefix != "" {
		subject = p.prefix + "." + subject
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection so buffered events are flushed.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = Nop{}
	_ Conn      = (*nats.Conn)(nil)
)
