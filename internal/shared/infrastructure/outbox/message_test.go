package outbox_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotMovedEvent struct {
	domain.BaseEvent
	ScheduledTime string `json:"scheduled_time"`
}

func newSlotMovedEvent(at time.Time) *slotMovedEvent {
	e := &slotMovedEvent{
		BaseEvent:     domain.NewBaseEvent(uuid.New(), "DeliverySlot", "delivery.slot.rescheduled", at),
		ScheduledTime: "17:00",
	}
	e.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), RequestID: "req-1"})
	return e
}

func TestNewMessage(t *testing.T) {
	at := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	event := newSlotMovedEvent(at)

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, event.AggregateID(), msg.AggregateID)
	assert.Equal(t, "DeliverySlot", msg.AggregateType)
	assert.Equal(t, "delivery.slot.rescheduled", msg.RoutingKey)
	assert.Equal(t, at, msg.OccurredAt)
	assert.JSONEq(t, `{"scheduled_time":"17:00"}`, string(msg.Payload))
	assert.False(t, msg.IsPublished())

	var md domain.EventMetadata
	require.NoError(t, json.Unmarshal(msg.Metadata, &md))
	assert.Equal(t, "req-1", md.RequestID)
}

func TestMessage_EnvelopeRoundTrip(t *testing.T) {
	msg, err := outbox.NewMessage(newSlotMovedEvent(time.Now()))
	require.NoError(t, err)

	body, err := msg.Envelope().Encode()
	require.NoError(t, err)

	env, err := eventbus.DecodeEnvelope(body, "")
	require.NoError(t, err)
	assert.Equal(t, msg.EventID, env.EventID)
	assert.Equal(t, msg.AggregateID, env.AggregateID)
	assert.Equal(t, msg.RoutingKey, env.RoutingKey)
	assert.JSONEq(t, string(msg.Payload), string(env.Payload))
}

func TestNewMessages(t *testing.T) {
	events := []domain.DomainEvent{newSlotMovedEvent(time.Now()), newSlotMovedEvent(time.Now())}

	msgs, err := outbox.NewMessages(events)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.NotEqual(t, msgs[0].EventID, msgs[1].EventID)
}
