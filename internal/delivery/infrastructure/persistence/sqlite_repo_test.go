package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/infrastructure/persistence"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/migrations"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.RunSQLiteMigrations(context.Background(), db)
	require.NoError(t, err)
	return db
}

var created = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func newSlot(t *testing.T, date, at string, meals ...uuid.UUID) *domain.DeliverySlot {
	t.Helper()
	d, err := domain.ParseCalendarDate(date)
	require.NoError(t, err)
	slot, err := domain.NewDeliverySlot(domain.NewSlotParams{
		Date:          d,
		ScheduledTime: domain.MustParseTimeOfDay(at),
		CustomerName:  "Grace",
		Address:       "1 Main St",
		MealIDs:       meals,
	}, created)
	require.NoError(t, err)
	return slot
}

func TestSQLiteSlotRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteSlotRepository(setupSQLite(t))

	slot := newSlot(t, "2024-06-01", "13:00", uuid.New(), uuid.New())
	require.NoError(t, repo.Create(ctx, slot))
	assert.Equal(t, 1, slot.Version())

	found, err := repo.FindByID(ctx, slot.ID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, slot.DeliveryAt(), found.DeliveryAt())
	assert.Equal(t, "13:00", found.ScheduledTime().String())
	assert.Equal(t, "Grace", found.CustomerName())
	assert.Equal(t, "1 Main St", found.Address())
	assert.Equal(t, domain.SlotStatusScheduled, found.Status())
	assert.Equal(t, 1, found.Version())
	require.Len(t, found.Meals(), 2)
	assert.Equal(t, slot.Meals()[0].ID(), found.Meals()[0].ID())
	assert.Equal(t, slot.Meals()[1].MealID(), found.Meals()[1].MealID())

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteSlotRepository_UpdateCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteSlotRepository(setupSQLite(t))
	slot := newSlot(t, "2024-06-01", "09:00", uuid.New())
	require.NoError(t, repo.Create(ctx, slot))

	first, err := repo.FindByID(ctx, slot.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, slot.ID())
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	skipped := domain.MealStatusSkipped
	_, err = first.UpdateMealEntry(first.Meals()[0].ID(), domain.MealEntryChange{Status: &skipped}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version())

	require.NoError(t, second.ChangeStatus(domain.SlotStatusCancelled, now))
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, sharedDomain.ErrConcurrentModification)

	stored, err := repo.FindByID(ctx, slot.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version())
	assert.Equal(t, domain.SlotStatusScheduled, stored.Status())
	assert.Equal(t, domain.MealStatusSkipped, stored.Meals()[0].Status())
	assert.Equal(t, now, stored.UpdatedAt())
}

func TestSQLiteSlotRepository_FindByDeliveryRange_ScenarioE(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteSlotRepository(setupSQLite(t))

	dayBefore := newSlot(t, "2024-05-31", "23:59")
	firstInstant := newSlot(t, "2024-06-01", "00:00")
	evening := newSlot(t, "2024-06-01", "23:00")
	dayAfter := newSlot(t, "2024-06-02", "00:00")
	for _, s := range []*domain.DeliverySlot{dayAfter, evening, dayBefore, firstInstant} {
		require.NoError(t, repo.Create(ctx, s))
	}

	day, err := domain.ParseCalendarDate("2024-06-01")
	require.NoError(t, err)
	from, to := day.DayBounds()

	slots, err := repo.FindByDeliveryRange(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, firstInstant.ID(), slots[0].ID())
	assert.Equal(t, evening.ID(), slots[1].ID())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, dayBefore.ID(), all[0].ID())
	assert.Empty(t, all[0].Meals())
}

func TestSQLiteAttemptRepository(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	slots := persistence.NewSQLiteSlotRepository(db)
	attempts := persistence.NewSQLiteAttemptRepository(db)

	slot := newSlot(t, "2024-06-01", "09:00")
	require.NoError(t, slots.Create(ctx, slot))

	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	resolver := domain.NewResolver(domain.DefaultTimeSlotCatalog())

	req, err := domain.ParseRescheduleRequest("2024-06-01", "13:00")
	require.NoError(t, err)
	resolved, err := resolver.Resolve(slot, req, now)
	require.NoError(t, err)
	require.NoError(t, attempts.Save(ctx, domain.NewSuccessfulAttempt(slot, req, resolved, now)))

	late := now.Add(9 * time.Hour)
	lateReq, err := domain.ParseRescheduleRequest("2024-06-01", "23:00")
	require.NoError(t, err)
	require.NoError(t, attempts.Save(ctx, domain.NewFailedAttempt(slot, lateReq, "No available delivery time slot remaining on 2024-06-01", late)))

	stored, err := attempts.FindBySlotID(ctx, slot.ID())
	require.NoError(t, err)
	require.Len(t, stored, 2)

	ok := stored[0].Snapshot()
	assert.True(t, ok.Success)
	assert.True(t, ok.Adjusted)
	assert.Equal(t, "13:00", ok.RequestedTime.String())
	assert.Equal(t, "09:00", ok.PreviousTime.String())
	require.NotNil(t, ok.ResolvedTime)
	assert.Equal(t, "17:00", ok.ResolvedTime.String())
	assert.Equal(t, "2024-06-01", ok.ResolvedDate.String())

	failed := stored[1].Snapshot()
	assert.False(t, failed.Success)
	assert.Nil(t, failed.ResolvedDate)
	assert.Contains(t, failed.FailureReason, "No available")
	assert.Equal(t, late, failed.AttemptedAt)
}
