package domain

import (
	"errors"
	"fmt"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// ErrNoAvailableSlot is the kind of error returned when no catalog time
// remains on the requested date.
var ErrNoAvailableSlot = errors.New("no available slot")

// Caller-facing messages.
const (
	MsgSlotNotFound          = "Delivery slot not found"
	MsgMealEntryNotFound     = "Meal not found in this slot"
	MsgDateAndTimeRequired   = "Both date and scheduledTime are required"
	MsgInvalidDateFormat     = "Invalid date format"
	MsgInvalidTimeFormat     = "Invalid time format"
	MsgConcurrentUpdate      = "Delivery slot was modified concurrently, please retry"
	MsgCustomerNameRequired  = "customerName is required"
	MsgInvalidDeliveryType   = "deliveryType must be Delivery or Pickup"
	MsgInvalidMealReference  = "Invalid meal reference"
	MsgInvalidMealStatus     = "status must be one of scheduled, skipped, swapped, moved"
	MsgInvalidStatusChange   = "status must be completed or cancelled"
	MsgRescheduleFinishedFmt = "Cannot reschedule a %s delivery slot"
)

// NoAvailableSlot reports that date has no catalog time left after now.
func NoAvailableSlot(date CalendarDate) *sharedDomain.Error {
	return sharedDomain.NewError(ErrNoAvailableSlot,
		fmt.Sprintf("No available delivery time slot remaining on %s", date))
}

// ConcurrentModification reports a lost compare-and-swap.
func ConcurrentModification() *sharedDomain.Error {
	return sharedDomain.NewError(sharedDomain.ErrConcurrentModification, MsgConcurrentUpdate)
}
