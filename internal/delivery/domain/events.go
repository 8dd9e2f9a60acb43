package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// Routing keys of delivery events.
const (
	RoutingKeySlotCreated       = "delivery.slot.created"
	RoutingKeySlotRescheduled   = "delivery.slot.rescheduled"
	RoutingKeyMealEntryUpdated  = "delivery.slot.meal_updated"
	RoutingKeySlotStatusChanged = "delivery.slot.status_changed"
)

// SlotCreated is emitted when a delivery slot is booked.
type SlotCreated struct {
	sharedDomain.BaseEvent
	SlotID        uuid.UUID `json:"slot_id"`
	CustomerName  string    `json:"customer_name"`
	DeliveryType  string    `json:"delivery_type"`
	DeliveryAt    time.Time `json:"delivery_at"`
	ScheduledTime string    `json:"scheduled_time"`
	MealCount     int       `json:"meal_count"`
}

// NewSlotCreated creates a SlotCreated event.
func NewSlotCreated(s *DeliverySlot) *SlotCreated {
	return &SlotCreated{
		BaseEvent:     sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeySlotCreated, s.CreatedAt()),
		SlotID:        s.ID(),
		CustomerName:  s.CustomerName(),
		DeliveryType:  string(s.DeliveryType()),
		DeliveryAt:    s.DeliveryAt(),
		ScheduledTime: s.ScheduledTime().String(),
		MealCount:     len(s.Meals()),
	}
}

// SlotRescheduled is emitted when a slot moves to a new date or time.
type SlotRescheduled struct {
	sharedDomain.BaseEvent
	SlotID        uuid.UUID `json:"slot_id"`
	PreviousDate  string    `json:"previous_date"`
	PreviousTime  string    `json:"previous_time"`
	Date          string    `json:"date"`
	ScheduledTime string    `json:"scheduled_time"`
	Adjusted      bool      `json:"adjusted"`
}

// NewSlotRescheduled creates a SlotRescheduled event.
func NewSlotRescheduled(s *DeliverySlot, previousDate CalendarDate, previousTime TimeOfDay, adjusted bool, at time.Time) *SlotRescheduled {
	return &SlotRescheduled{
		BaseEvent:     sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeySlotRescheduled, at),
		SlotID:        s.ID(),
		PreviousDate:  previousDate.String(),
		PreviousTime:  previousTime.String(),
		Date:          s.Date().String(),
		ScheduledTime: s.ScheduledTime().String(),
		Adjusted:      adjusted,
	}
}

// MealEntryUpdated is emitted when a meal within a slot is skipped,
// swapped or moved.
type MealEntryUpdated struct {
	sharedDomain.BaseEvent
	SlotID  uuid.UUID `json:"slot_id"`
	EntryID uuid.UUID `json:"entry_id"`
	MealID  uuid.UUID `json:"meal_id"`
	Status  string    `json:"status"`
}

// NewMealEntryUpdated creates a MealEntryUpdated event.
func NewMealEntryUpdated(s *DeliverySlot, e *MealEntry, at time.Time) *MealEntryUpdated {
	return &MealEntryUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeyMealEntryUpdated, at),
		SlotID:    s.ID(),
		EntryID:   e.ID(),
		MealID:    e.MealID(),
		Status:    string(e.Status()),
	}
}

// SlotStatusChanged is emitted when a slot is completed or cancelled.
type SlotStatusChanged struct {
	sharedDomain.BaseEvent
	SlotID   uuid.UUID `json:"slot_id"`
	Previous string    `json:"previous"`
	Status   string    `json:"status"`
}

// NewSlotStatusChanged creates a SlotStatusChanged event.
func NewSlotStatusChanged(s *DeliverySlot, previous SlotStatus, at time.Time) *SlotStatusChanged {
	return &SlotStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(s.ID(), aggregateType, RoutingKeySlotStatusChanged, at),
		SlotID:    s.ID(),
		Previous:  string(previous),
		Status:    string(s.Status()),
	}
}
