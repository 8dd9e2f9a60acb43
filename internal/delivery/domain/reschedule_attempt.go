package domain

import (
	"time"

	"github.com/google/uuid"
)

// RescheduleAttempt is the audit record of one reschedule request,
// successful or not.
type RescheduleAttempt struct {
	id            uuid.UUID
	slotID        uuid.UUID
	requestedDate CalendarDate
	requestedTime TimeOfDay
	previousDate  CalendarDate
	previousTime  TimeOfDay
	resolvedDate  *CalendarDate
	resolvedTime  *TimeOfDay
	adjusted      bool
	success       bool
	failureReason string
	attemptedAt   time.Time
}

// NewSuccessfulAttempt records a reschedule that resolved to a schedule.
func NewSuccessfulAttempt(slot *DeliverySlot, req RescheduleRequest, resolved ResolvedSchedule, now time.Time) *RescheduleAttempt {
	a := newAttempt(slot, req, now)
	a.resolvedDate = &resolved.Date
	a.resolvedTime = &resolved.ScheduledTime
	a.adjusted = resolved.Adjusted
	a.success = true
	return a
}

// NewFailedAttempt records a reschedule that could not be resolved.
func NewFailedAttempt(slot *DeliverySlot, req RescheduleRequest, reason string, now time.Time) *RescheduleAttempt {
	a := newAttempt(slot, req, now)
	a.failureReason = reason
	return a
}

func newAttempt(slot *DeliverySlot, req RescheduleRequest, now time.Time) *RescheduleAttempt {
	return &RescheduleAttempt{
		id:            uuid.New(),
		slotID:        slot.ID(),
		requestedDate: req.Date,
		requestedTime: req.Time,
		previousDate:  slot.Date(),
		previousTime:  slot.ScheduledTime(),
		attemptedAt:   now.UTC(),
	}
}

// AttemptSnapshot is the persisted state of an attempt.
type AttemptSnapshot struct {
	ID            uuid.UUID
	SlotID        uuid.UUID
	RequestedDate CalendarDate
	RequestedTime TimeOfDay
	PreviousDate  CalendarDate
	PreviousTime  TimeOfDay
	ResolvedDate  *CalendarDate
	ResolvedTime  *TimeOfDay
	Adjusted      bool
	Success       bool
	FailureReason string
	AttemptedAt   time.Time
}

// RehydrateRescheduleAttempt rebuilds an attempt from persisted state.
func RehydrateRescheduleAttempt(s AttemptSnapshot) *RescheduleAttempt {
	return &RescheduleAttempt{
		id:            s.ID,
		slotID:        s.SlotID,
		requestedDate: s.RequestedDate,
		requestedTime: s.RequestedTime,
		previousDate:  s.PreviousDate,
		previousTime:  s.PreviousTime,
		resolvedDate:  s.ResolvedDate,
		resolvedTime:  s.ResolvedTime,
		adjusted:      s.Adjusted,
		success:       s.Success,
		failureReason: s.FailureReason,
		attemptedAt:   s.AttemptedAt.UTC(),
	}
}

// Snapshot returns the persisted state of the attempt.
func (a *RescheduleAttempt) Snapshot() AttemptSnapshot {
	return AttemptSnapshot{
		ID:            a.id,
		SlotID:        a.slotID,
		RequestedDate: a.requestedDate,
		RequestedTime: a.requestedTime,
		PreviousDate:  a.previousDate,
		PreviousTime:  a.previousTime,
		ResolvedDate:  a.resolvedDate,
		ResolvedTime:  a.resolvedTime,
		Adjusted:      a.adjusted,
		Success:       a.success,
		FailureReason: a.failureReason,
		AttemptedAt:   a.attemptedAt,
	}
}

func (a *RescheduleAttempt) ID() uuid.UUID          { return a.id }
func (a *RescheduleAttempt) SlotID() uuid.UUID      { return a.slotID }
func (a *RescheduleAttempt) Success() bool          { return a.success }
func (a *RescheduleAttempt) Adjusted() bool         { return a.adjusted }
func (a *RescheduleAttempt) FailureReason() string  { return a.failureReason }
func (a *RescheduleAttempt) AttemptedAt() time.Time { return a.attemptedAt }
