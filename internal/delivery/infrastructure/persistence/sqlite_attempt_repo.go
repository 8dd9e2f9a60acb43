package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteAttemptRepository implements domain.AttemptRepository using SQLite.
type SQLiteAttemptRepository struct {
	db *sql.DB
}

// NewSQLiteAttemptRepository creates a new SQLite reschedule attempt repository.
func NewSQLiteAttemptRepository(db *sql.DB) *SQLiteAttemptRepository {
	return &SQLiteAttemptRepository{db: db}
}

// Save inserts an attempt.
func (r *SQLiteAttemptRepository) Save(ctx context.Context, attempt *domain.RescheduleAttempt) error {
	a := attempt.Snapshot()
	var resolvedDate, resolvedTime sql.NullString
	if a.ResolvedDate != nil {
		resolvedDate = sql.NullString{String: a.ResolvedDate.String(), Valid: true}
	}
	if a.ResolvedTime != nil {
		resolvedTime = sql.NullString{String: a.ResolvedTime.String(), Valid: true}
	}

	_, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO reschedule_attempts (
			id, slot_id, requested_date, requested_time, previous_date, previous_time,
			resolved_date, resolved_time, adjusted, success, failure_reason, attempted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.SlotID.String(),
		a.RequestedDate.String(), a.RequestedTime.String(),
		a.PreviousDate.String(), a.PreviousTime.String(),
		resolvedDate, resolvedTime,
		boolToInt64(a.Adjusted), boolToInt64(a.Success),
		toNullString(a.FailureReason),
		sharedPersistence.FormatSQLiteTime(a.AttemptedAt),
	)
	return err
}

// FindBySlotID returns the attempts of a slot, oldest first.
func (r *SQLiteAttemptRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*domain.RescheduleAttempt, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT id, slot_id, requested_date, requested_time, previous_date, previous_time,
		       resolved_date, resolved_time, adjusted, success, failure_reason, attempted_at
		FROM reschedule_attempts
		WHERE slot_id = ?
		ORDER BY attempted_at, rowid`, slotID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.RescheduleAttempt
	for rows.Next() {
		var (
			a                            domain.AttemptSnapshot
			id, slot                     string
			requestedDate, requestedTime string
			previousDate, previousTime   string
			resolvedDate, resolvedTime   sql.NullString
			adjusted, success            int64
			failureReason                sql.NullString
			attemptedAt                  string
		)
		if err := rows.Scan(&id, &slot, &requestedDate, &requestedTime, &previousDate, &previousTime,
			&resolvedDate, &resolvedTime, &adjusted, &success, &failureReason, &attemptedAt); err != nil {
			return nil, err
		}

		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("reschedule attempt %q: %w", id, err)
		}
		a.SlotID = slotID
		if a.RequestedDate, a.RequestedTime, err = parseDateAndTime(requestedDate, requestedTime); err != nil {
			return nil, err
		}
		if a.PreviousDate, a.PreviousTime, err = parseDateAndTime(previousDate, previousTime); err != nil {
			return nil, err
		}
		if resolvedDate.Valid && resolvedTime.Valid {
			d, t, err := parseDateAndTime(resolvedDate.String, resolvedTime.String)
			if err != nil {
				return nil, err
			}
			a.ResolvedDate, a.ResolvedTime = &d, &t
		}
		if a.AttemptedAt, err = sharedPersistence.ParseSQLiteTime(attemptedAt); err != nil {
			return nil, err
		}
		a.Adjusted = adjusted != 0
		a.Success = success != 0
		a.FailureReason = failureReason.String
		attempts = append(attempts, domain.RehydrateRescheduleAttempt(a))
	}
	return attempts, rows.Err()
}

func parseDateAndTime(date, at string) (domain.CalendarDate, domain.TimeOfDay, error) {
	d, err := domain.ParseCalendarDate(date)
	if err != nil {
		return domain.CalendarDate{}, domain.TimeOfDay{}, err
	}
	t, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return domain.CalendarDate{}, domain.TimeOfDay{}, err
	}
	return d, t, nil
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
