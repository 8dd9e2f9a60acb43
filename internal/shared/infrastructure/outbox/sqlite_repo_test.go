package outbox_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
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

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	repo := outbox.NewSQLiteRepository(db)
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

	first, err := outbox.NewMessage(newSlotMovedEvent(now))
	require.NoError(t, err)
	second, err := outbox.NewMessage(newSlotMovedEvent(now))
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{first, second}))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	pending, err := repo.FetchPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.Equal(t, first.AggregateID, pending[0].AggregateID)
	assert.True(t, pending[0].OccurredAt.Equal(now))
	assert.JSONEq(t, string(first.Payload), string(pending[0].Payload))

	require.NoError(t, repo.MarkPublished(ctx, first.ID, now))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "nope", now.Add(time.Minute)))

	pending, err = repo.FetchPending(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "second is scheduled for later")

	pending, err = repo.FetchPending(ctx, now.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "nope", *pending[0].LastError)

	require.NoError(t, repo.MarkDead(ctx, second.ID, "nope", now))
	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	deleted, err := repo.DeleteOld(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLiteRepository_SaveBatchJoinsTransaction(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	repo := outbox.NewSQLiteRepository(db)
	uow := persistence.NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	msg, err := outbox.NewMessage(newSlotMovedEvent(time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{msg}))
	require.NoError(t, uow.Rollback(txCtx))

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
