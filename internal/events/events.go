// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/manicvanity/storefront/internal/domain"
)

const (
	TypeOrderPaid     = "order.paid"
	TypeOrderRefunded = "order.refunded"

	// Producer identifies this service in every envelope.
	Producer = "manicvanity-storefront"
)

// Publisher delivers envelopes to a broker. Callers treat a publish error as
// non-fatal.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Envelope is the wire format shared by every backend.
type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Key           string          `json:"-"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderPayload is the body of order.* events.
type OrderPayload struct {
	OrderID    uuid.UUID  `json:"orderId"`
	OwnerID    *uuid.UUID `json:"ownerId,omitempty"`
	TotalCents int64      `json:"totalCents"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
}

// NewOrderEvent builds an envelope for an order status change, keyed by
// order id so every event of one order lands on the same partition.
func NewOrderEvent(eventType string, order *domain.Order, correlationID string) (Envelope, error) {
	payload, err := json.Marshal(OrderPayload{
		OrderID:    order.ID,
		OwnerID:    order.OwnerID,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		Status:     string(order.Status),
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      Producer,
		CorrelationID: correlationID,
		Key:           order.ID.String(),
		Payload:       payload,
	}, nil
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                           { return nil }

// Open returns the publisher for backend: "kafka", "nats" or "none".
func Open(backend string, brokers []string, natsURL, topic string) (Publisher, error) {
	switch backend {
	case "kafka":
		return NewKafkaPublisher(brokers, topic), nil
	case "nats":
		return NewNATSPublisher(natsURL, topic)
	case "", "none":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", backend)
	}
}
