package subscribers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	catalogDomain "github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/subscribers"
	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// relay builds the envelopes the outbox relay would publish.
func relay(t *testing.T, events []sharedDomain.DomainEvent) []*eventbus.Envelope {
	t.Helper()
	var envs []*eventbus.Envelope
	for _, e := range events {
		msg, err := outbox.NewMessage(e)
		require.NoError(t, err)
		envs = append(envs, msg.Envelope())
	}
	return envs
}

func TestActivitySubscriber_CountsDeliveryEvents(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	registry := eventbus.NewConsumerRegistry(newLogger())
	registry.Register(subscribers.NewActivitySubscriber(metrics, newLogger()))

	meal, err := catalogDomain.NewMeal("Poke", "Tuna poke", catalogDomain.Macros{Protein: 32, Fat: 9, Carbs: 55, Calories: 430}, "", now)
	require.NoError(t, err)

	date, err := domain.ParseCalendarDate("2024-06-01")
	require.NoError(t, err)
	slot, err := domain.NewDeliverySlot(domain.NewSlotParams{
		Date:          date,
		ScheduledTime: domain.MustParseTimeOfDay("09:00"),
		CustomerName:  "Ada",
		MealIDs:       []uuid.UUID{meal.ID()},
	}, now)
	require.NoError(t, err)

	req, err := domain.ParseRescheduleRequest("2024-06-01", "13:00")
	require.NoError(t, err)
	resolved, err := domain.NewResolver(domain.DefaultTimeSlotCatalog()).Resolve(slot, req, now)
	require.NoError(t, err)
	slot.ApplyReschedule(resolved, now)

	skipped := domain.MealStatusSkipped
	_, err = slot.UpdateMealEntry(slot.Meals()[0].ID(), domain.MealEntryChange{Status: &skipped}, now)
	require.NoError(t, err)
	require.NoError(t, slot.ChangeStatus(domain.SlotStatusCompleted, now))

	events := append(meal.DomainEvents(), slot.DomainEvents()...)
	for _, env := range relay(t, events) {
		require.NoError(t, registry.Dispatch(context.Background(), env))
	}

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricMealsCreated))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSlotsCreated, observability.T("delivery_type", "Delivery")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricReschedules, observability.T("adjusted", "true")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricMealEntryUpdates, observability.T("status", "skipped")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", domain.RoutingKeySlotStatusChanged)))
}

func TestActivitySubscriber_RejectsBrokenPayload(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	sub := subscribers.NewActivitySubscriber(metrics, newLogger())

	err := sub.Handle(context.Background(), &eventbus.Envelope{
		EventID:    uuid.New(),
		RoutingKey: domain.RoutingKeySlotRescheduled,
		Payload:    []byte(`{"adjusted": "maybe"}`),
	})
	assert.Error(t, err)
	assert.Zero(t, metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", domain.RoutingKeySlotRescheduled)))
}

func TestActivitySubscriber_IgnoresUnknownEvents(t *testing.T) {
	sub := subscribers.NewActivitySubscriber(nil, nil)
	err := sub.Handle(context.Background(), &eventbus.Envelope{EventID: uuid.New(), RoutingKey: "billing.invoice.paid"})
	assert.NoError(t, err)
}
