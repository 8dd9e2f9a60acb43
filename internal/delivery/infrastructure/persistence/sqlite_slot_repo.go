package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const slotColumns = `id, delivery_at, delivery_type, customer_name, scheduled_time, address, status, version, created_at, updated_at`

// SQLiteSlotRepository implements domain.Repository using SQLite.
type SQLiteSlotRepository struct {
	db *sql.DB
}

// NewSQLiteSlotRepository creates a new SQLite delivery slot repository.
func NewSQLiteSlotRepository(db *sql.DB) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{db: db}
}

// inTx runs fn in the transaction carried by ctx, or in a new one.
func (r *SQLiteSlotRepository) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sharedPersistence.WithSQLiteTx(ctx, tx, true)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Create inserts a new slot and its meal entries.
func (r *SQLiteSlotRepository) Create(ctx context.Context, slot *domain.DeliverySlot) error {
	err := r.inTx(ctx, func(ctx context.Context) error {
		exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
		_, err := exec.ExecContext(ctx, `
			INSERT INTO delivery_slots (`+slotColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			slot.ID().String(),
			sharedPersistence.FormatSQLiteTime(slot.DeliveryAt()),
			string(slot.DeliveryType()),
			slot.CustomerName(),
			slot.ScheduledTime().String(),
			toNullString(slot.Address()),
			string(slot.Status()),
			sharedPersistence.FormatSQLiteTime(slot.CreatedAt()),
			sharedPersistence.FormatSQLiteTime(slot.UpdatedAt()),
		)
		if err != nil {
			return err
		}
		return r.insertEntries(ctx, slot)
	})
	if err != nil {
		return err
	}
	slot.SetVersion(1)
	return nil
}

// Update writes the slot with a compare-and-swap on version.
func (r *SQLiteSlotRepository) Update(ctx context.Context, slot *domain.DeliverySlot) error {
	err := r.inTx(ctx, func(ctx context.Context) error {
		exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
		res, err := exec.ExecContext(ctx, `
			UPDATE delivery_slots
			SET delivery_at = ?, delivery_type = ?, customer_name = ?, scheduled_time = ?,
			    address = ?, status = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`,
			sharedPersistence.FormatSQLiteTime(slot.DeliveryAt()),
			string(slot.DeliveryType()),
			slot.CustomerName(),
			slot.ScheduledTime().String(),
			toNullString(slot.Address()),
			string(slot.Status()),
			sharedPersistence.FormatSQLiteTime(slot.UpdatedAt()),
			slot.ID().String(),
			slot.Version(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ConcurrentModification()
		}

		if _, err := exec.ExecContext(ctx, `DELETE FROM delivery_slot_meals WHERE slot_id = ?`, slot.ID().String()); err != nil {
			return err
		}
		return r.insertEntries(ctx, slot)
	})
	if err != nil {
		return err
	}
	slot.IncrementVersion()
	return nil
}

func (r *SQLiteSlotRepository) insertEntries(ctx context.Context, slot *domain.DeliverySlot) error {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	for i, e := range slot.Meals() {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO delivery_slot_meals (id, slot_id, meal_id, status, position)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID().String(), slot.ID().String(), e.MealID().String(), string(e.Status()), i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a slot by its ID.
func (r *SQLiteSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliverySlot, error) {
	slots, err := r.query(ctx, `SELECT `+slotColumns+` FROM delivery_slots WHERE id = ?`, id.String())
	if err != nil || len(slots) == 0 {
		return nil, err
	}
	return slots[0], nil
}

// FindAll returns every slot ordered by delivery time.
func (r *SQLiteSlotRepository) FindAll(ctx context.Context) ([]*domain.DeliverySlot, error) {
	return r.query(ctx, `SELECT `+slotColumns+` FROM delivery_slots ORDER BY delivery_at, created_at`)
}

// FindByDeliveryRange returns slots delivered within [from, to].
func (r *SQLiteSlotRepository) FindByDeliveryRange(ctx context.Context, from, to time.Time) ([]*domain.DeliverySlot, error) {
	return r.query(ctx, `
		SELECT `+slotColumns+` FROM delivery_slots
		WHERE delivery_at >= ? AND delivery_at <= ?
		ORDER BY delivery_at, created_at`,
		sharedPersistence.FormatSQLiteTime(from), sharedPersistence.FormatSQLiteTime(to))
}

func (r *SQLiteSlotRepository) query(ctx context.Context, query string, args ...any) ([]*domain.DeliverySlot, error) {
	exec := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.SlotSnapshot
	for rows.Next() {
		s, err := scanSQLiteSlot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	entries, err := r.loadEntries(ctx, snapshots)
	if err != nil {
		return nil, err
	}
	slots := make([]*domain.DeliverySlot, len(snapshots))
	for i, s := range snapshots {
		s.Meals = entries[s.ID]
		slots[i] = domain.RehydrateDeliverySlot(s)
	}
	return slots, nil
}

func (r *SQLiteSlotRepository) loadEntries(ctx context.Context, snapshots []domain.SlotSnapshot) (map[uuid.UUID][]*domain.MealEntry, error) {
	placeholders := make([]string, len(snapshots))
	args := make([]any, len(snapshots))
	for i, s := range snapshots {
		placeholders[i] = "?"
		args[i] = s.ID.String()
	}

	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, fmt.Sprintf(`
		SELECT id, slot_id, meal_id, status FROM delivery_slot_meals
		WHERE slot_id IN (%s)
		ORDER BY slot_id, position`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[uuid.UUID][]*domain.MealEntry, len(snapshots))
	for rows.Next() {
		var id, slotID, mealID, status string
		if err := rows.Scan(&id, &slotID, &mealID, &status); err != nil {
			return nil, err
		}
		entry, slotUUID, err := parseEntry(id, slotID, mealID, status)
		if err != nil {
			return nil, err
		}
		entries[slotUUID] = append(entries[slotUUID], entry)
	}
	return entries, rows.Err()
}

func scanSQLiteSlot(row interface{ Scan(dest ...any) error }) (domain.SlotSnapshot, error) {
	var (
		s                            domain.SlotSnapshot
		id, deliveryAt, deliveryType string
		scheduledTime, status        string
		address                      sql.NullString
		createdAt, updatedAt         string
	)
	err := row.Scan(&id, &deliveryAt, &deliveryType, &s.CustomerName, &scheduledTime,
		&address, &status, &s.Version, &createdAt, &updatedAt)
	if err != nil {
		return s, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("delivery slot %q: %w", id, err)
	}
	if s.DeliveryAt, err = sharedPersistence.ParseSQLiteTime(deliveryAt); err != nil {
		return s, err
	}
	if s.CreatedAt, err = sharedPersistence.ParseSQLiteTime(createdAt); err != nil {
		return s, err
	}
	if s.UpdatedAt, err = sharedPersistence.ParseSQLiteTime(updatedAt); err != nil {
		return s, err
	}
	if s.ScheduledTime, err = domain.ParseTimeOfDay(scheduledTime); err != nil {
		return s, fmt.Errorf("delivery slot %s: %w", id, err)
	}
	s.DeliveryType = domain.DeliveryType(deliveryType)
	s.Status = domain.SlotStatus(status)
	s.Address = address.String
	return s, nil
}

func parseEntry(id, slotID, mealID, status string) (*domain.MealEntry, uuid.UUID, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("meal entry %q: %w", id, err)
	}
	slotUUID, err := uuid.Parse(slotID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("meal entry %s slot: %w", id, err)
	}
	mealUUID, err := uuid.Parse(mealID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("meal entry %s meal: %w", id, err)
	}
	return domain.RehydrateMealEntry(entryID, mealUUID, domain.MealStatus(status)), slotUUID, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
