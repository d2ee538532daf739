package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

type NATSPublisher struct {
	nc     Conn
	prefix string
}

// NewNATSPublisher connects to url. Events go to "<prefix>.<event type>".
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(Producer),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATSPublisherWithConn(nc, prefix), nil
}

func NewNATSPublisherWithConn(nc Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := nats.NewMsg(p.Subject(env.EventType))
	msg.Data = data
	msg.Header.Set("Nats-Msg-Id", env.EventID)
	msg.Header.Set("Event-Key", env.Key)

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", env.EventType, err)
	}
	return p.nc.FlushWithContext(ctx)
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
