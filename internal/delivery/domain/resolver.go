package domain

import (
	"fmt"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// RescheduleRequest is a validated reschedule target.
type RescheduleRequest struct {
	Date CalendarDate
	Time TimeOfDay
}

// ParseRescheduleRequest validates the raw date and time of a reschedule.
func ParseRescheduleRequest(date, scheduledTime string) (RescheduleRequest, error) {
	date, scheduledTime = strings.TrimSpace(date), strings.TrimSpace(scheduledTime)
	if date == "" || scheduledTime == "" {
		return RescheduleRequest{}, sharedDomain.InvalidInput(MsgDateAndTimeRequired)
	}
	d, err := ParseCalendarDate(date)
	if err != nil {
		return RescheduleRequest{}, sharedDomain.InvalidInput(MsgInvalidDateFormat)
	}
	t, err := ParseTimeOfDay(scheduledTime)
	if err != nil {
		return RescheduleRequest{}, sharedDomain.InvalidInput(MsgInvalidTimeFormat)
	}
	return RescheduleRequest{Date: d, Time: t}, nil
}

// ResolvedSchedule is the outcome of a reschedule.
type ResolvedSchedule struct {
	Date          CalendarDate
	ScheduledTime TimeOfDay
	Status        SlotStatus
	// Adjusted reports whether the catalog replaced the requested time.
	Adjusted bool
}

// Resolver decides where a reschedule lands. It holds no mutable state.
type Resolver struct {
	catalog *TimeSlotCatalog
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog *TimeSlotCatalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Catalog returns the time slot catalog in use.
func (r *Resolver) Catalog() *TimeSlotCatalog { return r.catalog }

// Resolve computes the schedule for moving slot to req, given now.
// A target strictly after now is kept as requested. Otherwise the first
// catalog time after now on the requested date is used.
func (r *Resolver) Resolve(slot *DeliverySlot, req RescheduleRequest, now time.Time) (ResolvedSchedule, error) {
	if slot.Status().IsTerminal() {
		return ResolvedSchedule{}, sharedDomain.InvalidInput(fmt.Sprintf(MsgRescheduleFinishedFmt, slot.Status()))
	}

	if req.Date.At(req.Time).After(now) {
		return ResolvedSchedule{
			Date:          req.Date,
			ScheduledTime: req.Time,
			Status:        SlotStatusRescheduled,
		}, nil
	}

	next, ok := r.catalog.NextAvailable(now, req.Date)
	if !ok {
		return ResolvedSchedule{}, NoAvailableSlot(req.Date)
	}
	return ResolvedSchedule{
		Date:          req.Date,
		ScheduledTime: next,
		Status:        SlotStatusRescheduled,
		Adjusted:      true,
	}, nil
}

// ResolveRaw validates the raw date and time and resolves them.
func (r *Resolver) ResolveRaw(slot *DeliverySlot, date, scheduledTime string, now time.Time) (ResolvedSchedule, error) {
	req, err := ParseRescheduleRequest(date, scheduledTime)
	if err != nil {
		return ResolvedSchedule{}, err
	}
	return r.Resolve(slot, req, now)
}
