package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// CalendarDate is a UTC calendar day.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// ParseCalendarDate accepts YYYY-MM-DD or an RFC 3339 timestamp. For a
// timestamp the UTC calendar date is used.
func ParseCalendarDate(s string) (CalendarDate, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return CalendarDateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return CalendarDateOf(t), nil
	}
	return CalendarDate{}, fmt.Errorf("invalid calendar date %q", s)
}

// CalendarDateOf returns the UTC calendar date of t.
func CalendarDateOf(t time.Time) CalendarDate {
	y, m, d := t.UTC().Date()
	return CalendarDate{year: y, month: m, day: d}
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

// Midnight returns 00:00:00.000 UTC of the date.
func (d CalendarDate) Midnight() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// At combines the date with a time of day.
func (d CalendarDate) At(t TimeOfDay) time.Time {
	return time.Date(d.year, d.month, d.day, t.hour, t.minute, 0, 0, time.UTC)
}

// DayBounds returns the inclusive bounds [00:00:00.000, 23:59:59.999] of
// the date in UTC.
func (d CalendarDate) DayBounds() (time.Time, time.Time) {
	start := d.Midnight()
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// String renders YYYY-MM-DD.
func (d CalendarDate) String() string {
	return d.Midnight().Format(dateLayout)
}
