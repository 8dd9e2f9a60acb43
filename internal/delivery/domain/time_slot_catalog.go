package domain

import (
	"errors"
	"slices"
	"time"
)

// ErrEmptyCatalog is returned when a catalog has no time slots.
var ErrEmptyCatalog = errors.New("time slot catalog is empty")

// DefaultTimeSlots is the catalog used when none is configured.
var DefaultTimeSlots = []string{"09:00", "11:00", "13:00", "14:00", "17:00", "19:00", "21:00", "23:00"}

// TimeSlotCatalog is an ordered, de-duplicated set of times of day at which
// deliveries may be scheduled.
type TimeSlotCatalog struct {
	slots []TimeOfDay
}

// NewTimeSlotCatalog builds a catalog, sorting ascending and dropping duplicates.
func NewTimeSlotCatalog(slots []TimeOfDay) (*TimeSlotCatalog, error) {
	if len(slots) == 0 {
		return nil, ErrEmptyCatalog
	}
	sorted := slices.Clone(slots)
	slices.SortFunc(sorted, func(a, b TimeOfDay) int { return a.minutes() - b.minutes() })
	return &TimeSlotCatalog{slots: slices.Compact(sorted)}, nil
}

// ParseTimeSlotCatalog builds a catalog from HH:MM strings.
func ParseTimeSlotCatalog(values []string) (*TimeSlotCatalog, error) {
	slots := make([]TimeOfDay, 0, len(values))
	for _, v := range values {
		t, err := ParseTimeOfDay(v)
		if err != nil {
			return nil, err
		}
		slots = append(slots, t)
	}
	return NewTimeSlotCatalog(slots)
}

// DefaultTimeSlotCatalog returns the built-in catalog.
func DefaultTimeSlotCatalog() *TimeSlotCatalog {
	c, err := ParseTimeSlotCatalog(DefaultTimeSlots)
	if err != nil {
		panic(err)
	}
	return c
}

// Slots returns a copy of the catalog entries in order.
func (c *TimeSlotCatalog) Slots() []TimeOfDay {
	return slices.Clone(c.slots)
}

// Strings returns the catalog entries as HH:MM.
func (c *TimeSlotCatalog) Strings() []string {
	out := make([]string, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.String()
	}
	return out
}

// NextAvailable returns the first entry that, on date, is strictly after
// reference. It reports false when the day has no such entry.
func (c *TimeSlotCatalog) NextAvailable(reference time.Time, date CalendarDate) (TimeOfDay, bool) {
	for _, slot := range c.slots {
		if date.At(slot).After(reference) {
			return slot, true
		}
	}
	return TimeOfDay{}, false
}
