package domain

import (
	"fmt"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "DeliverySlot"

// DeliveryType distinguishes courier delivery from customer pickup.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "Delivery"
	DeliveryTypePickup   DeliveryType = "Pickup"
)

// IsValid checks if the delivery type is valid.
func (t DeliveryType) IsValid() bool {
	return t == DeliveryTypeDelivery || t == DeliveryTypePickup
}

// SlotStatus is the lifecycle state of a delivery slot.
type SlotStatus string

const (
	SlotStatusScheduled   SlotStatus = "scheduled"
	SlotStatusRescheduled SlotStatus = "rescheduled"
	SlotStatusCompleted   SlotStatus = "completed"
	SlotStatusCancelled   SlotStatus = "cancelled"
)

// IsValid checks if the slot status is valid.
func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotStatusScheduled, SlotStatusRescheduled, SlotStatusCompleted, SlotStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the slot can no longer change schedule.
func (s SlotStatus) IsTerminal() bool {
	return s == SlotStatusCompleted || s == SlotStatusCancelled
}

// DeliverySlot is a customer's delivery or pickup appointment and the meals
// attached to it. The appointment is held as one UTC instant.
type DeliverySlot struct {
	sharedDomain.BaseAggregateRoot
	deliveryAt    time.Time
	deliveryType  DeliveryType
	customerName  string
	scheduledTime TimeOfDay
	address       string
	status        SlotStatus
	meals         []*MealEntry
}

// NewSlotParams holds validated input for NewDeliverySlot.
type NewSlotParams struct {
	Date          CalendarDate
	ScheduledTime TimeOfDay
	DeliveryType  DeliveryType
	CustomerName  string
	Address       string
	MealIDs       []uuid.UUID
}

// NewDeliverySlot creates a scheduled slot. An empty delivery type defaults
// to Delivery.
func NewDeliverySlot(p NewSlotParams, now time.Time) (*DeliverySlot, error) {
	name := strings.TrimSpace(p.CustomerName)
	if name == "" {
		return nil, sharedDomain.InvalidInput(MsgCustomerNameRequired)
	}
	if p.Date.IsZero() {
		return nil, sharedDomain.InvalidInput(MsgInvalidDateFormat)
	}
	deliveryType := p.DeliveryType
	if deliveryType == "" {
		deliveryType = DeliveryTypeDelivery
	}
	if !deliveryType.IsValid() {
		return nil, sharedDomain.InvalidInput(MsgInvalidDeliveryType)
	}

	meals := make([]*MealEntry, 0, len(p.MealIDs))
	for _, id := range p.MealIDs {
		meals = append(meals, NewMealEntry(id))
	}

	slot := &DeliverySlot{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		deliveryAt:        p.Date.At(p.ScheduledTime),
		deliveryType:      deliveryType,
		customerName:      name,
		scheduledTime:     p.ScheduledTime,
		address:           strings.TrimSpace(p.Address),
		status:            SlotStatusScheduled,
		meals:             meals,
	}
	slot.AddDomainEvent(NewSlotCreated(slot))

	return slot, nil
}

// Getters
func (s *DeliverySlot) DeliveryAt() time.Time      { return s.deliveryAt }
func (s *DeliverySlot) Date() CalendarDate         { return CalendarDateOf(s.deliveryAt) }
func (s *DeliverySlot) DeliveryType() DeliveryType { return s.deliveryType }
func (s *DeliverySlot) CustomerName() string       { return s.customerName }
func (s *DeliverySlot) ScheduledTime() TimeOfDay   { return s.scheduledTime }
func (s *DeliverySlot) Address() string            { return s.address }
func (s *DeliverySlot) Status() SlotStatus         { return s.status }

// Meals returns the meal entries in their stored order.
func (s *DeliverySlot) Meals() []*MealEntry { return s.meals }

// MealIDs returns the distinct meal references of the slot.
func (s *DeliverySlot) MealIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(s.meals))
	ids := make([]uuid.UUID, 0, len(s.meals))
	for _, e := range s.meals {
		if !seen[e.mealID] {
			seen[e.mealID] = true
			ids = append(ids, e.mealID)
		}
	}
	return ids
}

// ApplyReschedule moves the slot to a resolved schedule and marks it rescheduled.
func (s *DeliverySlot) ApplyReschedule(resolved ResolvedSchedule, now time.Time) {
	previousDate, previousTime := s.Date(), s.scheduledTime

	s.deliveryAt = resolved.Date.At(resolved.ScheduledTime)
	s.scheduledTime = resolved.ScheduledTime
	s.status = SlotStatusRescheduled
	s.Touch(now)

	s.AddDomainEvent(NewSlotRescheduled(s, previousDate, previousTime, resolved.Adjusted, now))
}

// MealEntryChange describes an update to one meal entry. Nil fields are
// left untouched.
type MealEntryChange struct {
	Status *MealStatus
	MealID *uuid.UUID
}

// UpdateMealEntry applies change to the entry with entryID. The slot status
// is never affected.
func (s *DeliverySlot) UpdateMealEntry(entryID uuid.UUID, change MealEntryChange, now time.Time) (*MealEntry, error) {
	var entry *MealEntry
	for _, e := range s.meals {
		if e.id == entryID {
			entry = e
			break
		}
	}
	if entry == nil {
		return nil, sharedDomain.NotFound(MsgMealEntryNotFound)
	}
	if change.Status != nil && !change.Status.IsValid() {
		return nil, sharedDomain.InvalidInput(MsgInvalidMealStatus)
	}
	if change.Status == nil && change.MealID == nil {
		return entry, nil
	}

	if change.Status != nil {
		entry.status = *change.Status
	}
	if change.MealID != nil {
		entry.mealID = *change.MealID
	}
	s.Touch(now)
	s.AddDomainEvent(NewMealEntryUpdated(s, entry, now))

	return entry, nil
}

// ChangeStatus completes or cancels the slot.
func (s *DeliverySlot) ChangeStatus(target SlotStatus, now time.Time) error {
	if !target.IsTerminal() {
		return sharedDomain.InvalidInput(MsgInvalidStatusChange)
	}
	if s.status.IsTerminal() {
		return sharedDomain.InvalidInput(fmt.Sprintf("Delivery slot is already %s", s.status))
	}

	previous := s.status
	s.status = target
	s.Touch(now)
	s.AddDomainEvent(NewSlotStatusChanged(s, previous, now))
	return nil
}

// SlotSnapshot is the persisted state of a slot.
type SlotSnapshot struct {
	ID            uuid.UUID
	DeliveryAt    time.Time
	DeliveryType  DeliveryType
	CustomerName  string
	ScheduledTime TimeOfDay
	Address       string
	Status        SlotStatus
	Meals         []*MealEntry
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RehydrateDeliverySlot rebuilds a slot from persisted state without
// emitting events.
func RehydrateDeliverySlot(s SlotSnapshot) *DeliverySlot {
	meals := s.Meals
	if meals == nil {
		meals = make([]*MealEntry, 0)
	}
	return &DeliverySlot{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt), s.Version,
		),
		deliveryAt:    s.DeliveryAt.UTC(),
		deliveryType:  s.DeliveryType,
		customerName:  s.CustomerName,
		scheduledTime: s.ScheduledTime,
		address:       s.Address,
		status:        s.Status,
		meals:         meals,
	}
}
