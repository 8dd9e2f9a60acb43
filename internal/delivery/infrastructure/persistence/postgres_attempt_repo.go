package persistence

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAttemptRepository implements domain.AttemptRepository using PostgreSQL.
type PostgresAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAttemptRepository creates a new PostgreSQL reschedule attempt repository.
func NewPostgresAttemptRepository(pool *pgxpool.Pool) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{pool: pool}
}

// Save inserts an attempt.
func (r *PostgresAttemptRepository) Save(ctx context.Context, attempt *domain.RescheduleAttempt) error {
	a := attempt.Snapshot()
	var (
		resolvedDate *time.Time
		resolvedTime *string
	)
	if a.ResolvedDate != nil {
		d := a.ResolvedDate.Midnight()
		resolvedDate = &d
	}
	if a.ResolvedTime != nil {
		t := a.ResolvedTime.String()
		resolvedTime = &t
	}

	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO reschedule_attempts (
			id, slot_id, requested_date, requested_time, previous_date, previous_time,
			resolved_date, resolved_time, adjusted, success, failure_reason, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.SlotID,
		a.RequestedDate.Midnight(), a.RequestedTime.String(),
		a.PreviousDate.Midnight(), a.PreviousTime.String(),
		resolvedDate, resolvedTime,
		a.Adjusted, a.Success, nullableString(a.FailureReason), a.AttemptedAt,
	)
	return err
}

// FindBySlotID returns the attempts of a slot, oldest first.
func (r *PostgresAttemptRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*domain.RescheduleAttempt, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT id, slot_id, requested_date, requested_time, previous_date, previous_time,
		       resolved_date, resolved_time, adjusted, success, failure_reason, attempted_at
		FROM reschedule_attempts
		WHERE slot_id = $1
		ORDER BY attempted_at`, slotID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.RescheduleAttempt, error) {
		var (
			a                           domain.AttemptSnapshot
			requestedDate, previousDate time.Time
			requestedTime, previousTime string
			resolvedDate                *time.Time
			resolvedTime, failureReason *string
		)
		if err := row.Scan(&a.ID, &a.SlotID, &requestedDate, &requestedTime, &previousDate, &previousTime,
			&resolvedDate, &resolvedTime, &a.Adjusted, &a.Success, &failureReason, &a.AttemptedAt); err != nil {
			return nil, err
		}

		var err error
		a.RequestedDate = domain.CalendarDateOf(requestedDate)
		if a.RequestedTime, err = domain.ParseTimeOfDay(requestedTime); err != nil {
			return nil, err
		}
		a.PreviousDate = domain.CalendarDateOf(previousDate)
		if a.PreviousTime, err = domain.ParseTimeOfDay(previousTime); err != nil {
			return nil, err
		}
		if resolvedDate != nil && resolvedTime != nil {
			d := domain.CalendarDateOf(*resolvedDate)
			t, err := domain.ParseTimeOfDay(*resolvedTime)
			if err != nil {
				return nil, err
			}
			a.ResolvedDate, a.ResolvedTime = &d, &t
		}
		if failureReason != nil {
			a.FailureReason = *failureReason
		}
		return domain.RehydrateRescheduleAttempt(a), nil
	})
}
