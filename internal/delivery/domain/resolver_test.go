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

func newSlot(t *testing.T, date, at string) *domain.DeliverySlot {
	t.Helper()
	d, err := domain.ParseCalendarDate(date)
	require.NoError(t, err)
	slot, err := domain.NewDeliverySlot(domain.NewSlotParams{
		Date:          d,
		ScheduledTime: domain.MustParseTimeOfDay(at),
		CustomerName:  "Ada",
		MealIDs:       []uuid.UUID{uuid.New(), uuid.New()},
	}, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return slot
}

func resolve(t *testing.T, slot *domain.DeliverySlot, date, at string, now time.Time) (domain.ResolvedSchedule, error) {
	t.Helper()
	return domain.NewResolver(domain.DefaultTimeSlotCatalog()).ResolveRaw(slot, date, at, now)
}

func TestResolver_ScenarioA_PastTimeMovesToNextSlot(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	got, err := resolve(t, newSlot(t, "2024-06-01", "09:00"), "2024-06-01", "13:00", now)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", got.Date.String())
	assert.Equal(t, "17:00", got.ScheduledTime.String())
	assert.Equal(t, domain.SlotStatusRescheduled, got.Status)
	assert.True(t, got.Adjusted)
}

func TestResolver_ScenarioB_FutureRequestKept(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	got, err := resolve(t, newSlot(t, "2024-06-01", "09:00"), "2024-06-02", "10:00", now)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-02", got.Date.String())
	assert.Equal(t, "10:00", got.ScheduledTime.String(), "off-catalog future time is stored verbatim")
	assert.Equal(t, domain.SlotStatusRescheduled, got.Status)
	assert.False(t, got.Adjusted)
}

func TestResolver_ScenarioC_NoSlotLeft(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)

	_, err := resolve(t, newSlot(t, "2024-06-01", "09:00"), "2024-06-01", "23:00", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAvailableSlot)
	assert.NotErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "2024-06-01")
}

func TestResolver_RequestEqualToNowIsAdjusted(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	got, err := resolve(t, newSlot(t, "2024-06-01", "09:00"), "2024-06-01", "13:00", now)
	require.NoError(t, err)
	assert.Equal(t, "14:00", got.ScheduledTime.String())
	assert.True(t, got.Adjusted)
}

func TestResolver_PastDateHasNoSlot(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	_, err := resolve(t, newSlot(t, "2024-06-01", "09:00"), "2024-05-31", "13:00", now)
	assert.ErrorIs(t, err, domain.ErrNoAvailableSlot)
}

func TestResolver_ResultIsStrictlyAfterNow(t *testing.T) {
	r := domain.NewResolver(domain.DefaultTimeSlotCatalog())
	slot := newSlot(t, "2024-06-01", "09:00")
	req, err := domain.ParseRescheduleRequest("2024-06-01", "00:00")
	require.NoError(t, err)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var previous time.Time
	for minute := 0; minute < 24*60; minute += 7 {
		now := start.Add(time.Duration(minute) * time.Minute)
		got, err := r.Resolve(slot, req, now)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrNoAvailableSlot)
			continue
		}
		at := got.Date.At(got.ScheduledTime)
		assert.True(t, at.After(now), "resolved %s must be after %s", at, now)
		assert.False(t, at.Before(previous), "lookup is monotonic in now")
		previous = at
	}
}

func TestResolver_Idempotent(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	slot := newSlot(t, "2024-06-01", "09:00")

	first, err1 := resolve(t, slot, "2024-06-01", "13:00", now)
	second, err2 := resolve(t, slot, "2024-06-01", "13:00", now)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, "09:00", slot.ScheduledTime().String(), "resolve does not mutate the slot")
}

func TestResolver_Validation(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	slot := newSlot(t, "2024-06-01", "09:00")

	tests := []struct {
		name, date, at, message string
	}{
		{"missing date", "", "13:00", domain.MsgDateAndTimeRequired},
		{"missing time", "2024-06-01", " ", domain.MsgDateAndTimeRequired},
		{"bad date", "2024-02-30", "13:00", domain.MsgInvalidDateFormat},
		{"bad time", "2024-06-01", "25:00", domain.MsgInvalidTimeFormat},
		{"time with seconds", "2024-06-01", "13:00:00", domain.MsgInvalidTimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolve(t, slot, tt.date, tt.at, now)
			assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestResolver_TerminalSlot(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	slot := newSlot(t, "2024-06-01", "09:00")
	require.NoError(t, slot.ChangeStatus(domain.SlotStatusCancelled, now))

	_, err := resolve(t, slot, "2024-06-02", "10:00", now)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Equal(t, "Cannot reschedule a cancelled delivery slot", err.Error())
}
