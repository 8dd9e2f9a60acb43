package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Publisher sends serialized envelopes to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// EventConsumer handles the routing keys it declares.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["delivery.slot.rescheduled"].
	EventTypes() []string

	Handle(ctx context.Context, event *Envelope) error
}

// Envelope is the wire format of every published domain event.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// Encode serializes the envelope.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses body. The broker routing key fills in a missing one.
func DecodeEnvelope(body []byte, routingKey string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}
	if env.EventID == uuid.Nil {
		return nil, fmt.Errorf("decode envelope: missing event_id")
	}
	return &env, nil
}

// DecodePayload unmarshals the event payload into v.
func (e *Envelope) DecodePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
