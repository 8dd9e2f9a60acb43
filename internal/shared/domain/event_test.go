package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	event := domain.NewBaseEvent(aggregateID, "DeliverySlot", "delivery.slot.created", at)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "DeliverySlot", event.AggregateType())
	assert.Equal(t, "delivery.slot.created", event.RoutingKey())
	assert.Equal(t, at, event.OccurredAt())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "Meal", "catalog.meal.created", time.Now())
	md := domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		RequestID:     "req-1",
	}

	event.SetMetadata(md)

	assert.Equal(t, md, event.Metadata())
}
