package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// TimeOfDay is a wall-clock time in HH:MM, interpreted in UTC.
type TimeOfDay struct {
	hour   int
	minute int
}

// ParseTimeOfDay parses a strict HH:MM value (00-23, 00-59).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// MustParseTimeOfDay is ParseTimeOfDay for constants.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf returns the UTC time of day of t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	t = t.UTC()
	return TimeOfDay{hour: t.Hour(), minute: t.Minute()}
}

// Hour returns the hour, 0-23.
func (t TimeOfDay) Hour() int { return t.hour }

// Minute returns the minute, 0-59.
func (t TimeOfDay) Minute() int { return t.minute }

// String renders HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes() < other.minutes()
}

func (t TimeOfDay) minutes() int { return t.hour*60 + t.minute }
