package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeliverySlot(t *testing.T) {
	slot := newSlot(t, "2024-06-03", "11:00")

	assert.Equal(t, time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC), slot.DeliveryAt())
	assert.Equal(t, "2024-06-03", slot.Date().String())
	assert.Equal(t, domain.DeliveryTypeDelivery, slot.DeliveryType())
	assert.Equal(t, domain.SlotStatusScheduled, slot.Status())
	require.Len(t, slot.Meals(), 2)
	for _, e := range slot.Meals() {
		assert.Equal(t, domain.MealStatusScheduled, e.Status())
	}

	events := slot.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.RoutingKeySlotCreated, events[0].RoutingKey())
}

func TestNewDeliverySlot_Validation(t *testing.T) {
	d, _ := domain.ParseCalendarDate("2024-06-03")
	at := domain.MustParseTimeOfDay("11:00")
	now := time.Now()

	_, err := domain.NewDeliverySlot(domain.NewSlotParams{Date: d, ScheduledTime: at}, now)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Equal(t, domain.MsgCustomerNameRequired, err.Error())

	_, err = domain.NewDeliverySlot(domain.NewSlotParams{Date: d, ScheduledTime: at, CustomerName: "Ada", DeliveryType: "Drone"}, now)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)

	pickup, err := domain.NewDeliverySlot(domain.NewSlotParams{Date: d, ScheduledTime: at, CustomerName: "Ada", DeliveryType: domain.DeliveryTypePickup}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryTypePickup, pickup.DeliveryType())
	assert.Empty(t, pickup.Meals())
}

func TestDeliverySlot_ApplyReschedule(t *testing.T) {
	slot := newSlot(t, "2024-06-01", "09:00")
	slot.ClearDomainEvents()
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	resolved, err := domain.NewResolver(domain.DefaultTimeSlotCatalog()).ResolveRaw(slot, "2024-06-01", "13:00", now)
	require.NoError(t, err)
	slot.ApplyReschedule(resolved, now)

	assert.Equal(t, time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC), slot.DeliveryAt())
	assert.Equal(t, domain.SlotStatusRescheduled, slot.Status())
	assert.Equal(t, now, slot.UpdatedAt())

	require.Len(t, slot.DomainEvents(), 1)
	event := slot.DomainEvents()[0].(*domain.SlotRescheduled)
	assert.Equal(t, "09:00", event.PreviousTime)
	assert.Equal(t, "17:00", event.ScheduledTime)
	assert.True(t, event.Adjusted)
}

func TestDeliverySlot_UpdateMealEntry_ScenarioD(t *testing.T) {
	slot := newSlot(t, "2024-06-01", "09:00")
	slot.ClearDomainEvents()
	target, other := slot.Meals()[0], slot.Meals()[1]
	swapped := domain.MealStatusSwapped
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	entry, err := slot.UpdateMealEntry(target.ID(), domain.MealEntryChange{Status: &swapped}, now)
	require.NoError(t, err)

	assert.Equal(t, domain.MealStatusSwapped, entry.Status())
	assert.Equal(t, domain.MealStatusScheduled, other.Status())
	assert.Equal(t, domain.SlotStatusScheduled, slot.Status(), "slot status is independent of meal statuses")
	require.Len(t, slot.DomainEvents(), 1)
	assert.Equal(t, domain.RoutingKeyMealEntryUpdated, slot.DomainEvents()[0].RoutingKey())
}

func TestDeliverySlot_UpdateMealEntry_MealReference(t *testing.T) {
	slot := newSlot(t, "2024-06-01", "09:00")
	entry := slot.Meals()[0]
	replacement := uuid.New()

	_, err := slot.UpdateMealEntry(entry.ID(), domain.MealEntryChange{MealID: &replacement}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, replacement, entry.MealID())
	assert.Equal(t, domain.MealStatusScheduled, entry.Status())
}

func TestDeliverySlot_UpdateMealEntry_Errors(t *testing.T) {
	slot := newSlot(t, "2024-06-01", "09:00")

	_, err := slot.UpdateMealEntry(uuid.New(), domain.MealEntryChange{}, time.Now())
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
	assert.Equal(t, domain.MsgMealEntryNotFound, err.Error())

	bogus := domain.MealStatus("eaten")
	_, err = slot.UpdateMealEntry(slot.Meals()[0].ID(), domain.MealEntryChange{Status: &bogus}, time.Now())
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Equal(t, domain.MealStatusScheduled, slot.Meals()[0].Status())
}

func TestDeliverySlot_ChangeStatus(t *testing.T) {
	slot := newSlot(t, "2024-06-01", "09:00")
	now := time.Now()

	assert.ErrorIs(t, slot.ChangeStatus(domain.SlotStatusRescheduled, now), sharedDomain.ErrInvalidInput)
	require.NoError(t, slot.ChangeStatus(domain.SlotStatusCompleted, now))
	assert.Equal(t, domain.SlotStatusCompleted, slot.Status())
	assert.ErrorIs(t, slot.ChangeStatus(domain.SlotStatusCancelled, now), sharedDomain.ErrInvalidInput)
}

func TestDeliverySlot_MealIDsAreDistinct(t *testing.T) {
	d, _ := domain.ParseCalendarDate("2024-06-01")
	id := uuid.New()
	slot, err := domain.NewDeliverySlot(domain.NewSlotParams{
		Date: d, ScheduledTime: domain.MustParseTimeOfDay("09:00"), CustomerName: "Ada",
		MealIDs: []uuid.UUID{id, id},
	}, time.Now())
	require.NoError(t, err)

	assert.Len(t, slot.Meals(), 2)
	assert.Equal(t, []uuid.UUID{id}, slot.MealIDs())
}
