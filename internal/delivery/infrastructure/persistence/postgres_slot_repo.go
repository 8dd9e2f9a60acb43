package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgresSlotRepository implements domain.Repository using PostgreSQL.
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgreSQL delivery slot repository.
func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

// inTx runs fn in the transaction carried by ctx, or in a new one.
func (r *PostgresSlotRepository) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(sharedPersistence.WithTx(ctx, tx, true)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Create inserts a new slot and its meal entries.
func (r *PostgresSlotRepository) Create(ctx context.Context, slot *domain.DeliverySlot) error {
	err := r.inTx(ctx, func(ctx context.Context) error {
		_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
			INSERT INTO delivery_slots (`+slotColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`,
			slot.ID(), slot.DeliveryAt(), string(slot.DeliveryType()), slot.CustomerName(),
			slot.ScheduledTime().String(), nullableString(slot.Address()), string(slot.Status()),
			slot.CreatedAt(), slot.UpdatedAt(),
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
func (r *PostgresSlotRepository) Update(ctx context.Context, slot *domain.DeliverySlot) error {
	err := r.inTx(ctx, func(ctx context.Context) error {
		exec := sharedPersistence.Executor(ctx, r.pool)
		tag, err := exec.Exec(ctx, `
			UPDATE delivery_slots
			SET delivery_at = $3, delivery_type = $4, customer_name = $5, scheduled_time = $6,
			    address = $7, status = $8, version = version + 1, updated_at = $9
			WHERE id = $1 AND version = $2`,
			slot.ID(), slot.Version(), slot.DeliveryAt(), string(slot.DeliveryType()), slot.CustomerName(),
			slot.ScheduledTime().String(), nullableString(slot.Address()), string(slot.Status()), slot.UpdatedAt(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ConcurrentModification()
		}

		if _, err := exec.Exec(ctx, `DELETE FROM delivery_slot_meals WHERE slot_id = $1`, slot.ID()); err != nil {
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

func (r *PostgresSlotRepository) insertEntries(ctx context.Context, slot *domain.DeliverySlot) error {
	if len(slot.Meals()) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, e := range slot.Meals() {
		batch.Queue(`
			INSERT INTO delivery_slot_meals (id, slot_id, meal_id, status, position)
			VALUES ($1, $2, $3, $4, $5)`,
			e.ID(), slot.ID(), e.MealID(), string(e.Status()), i)
	}
	info, _ := sharedPersistence.TxInfoFromContext(ctx)
	return info.Tx.SendBatch(ctx, batch).Close()
}

// FindByID finds a slot by its ID.
func (r *PostgresSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliverySlot, error) {
	slots, err := r.query(ctx, `SELECT `+slotColumns+` FROM delivery_slots WHERE id = $1`, id)
	if err != nil || len(slots) == 0 {
		return nil, err
	}
	return slots[0], nil
}

// FindAll returns every slot ordered by delivery time.
func (r *PostgresSlotRepository) FindAll(ctx context.Context) ([]*domain.DeliverySlot, error) {
	return r.query(ctx, `SELECT `+slotColumns+` FROM delivery_slots ORDER BY delivery_at, created_at`)
}

// FindByDeliveryRange returns slots delivered within [from, to].
func (r *PostgresSlotRepository) FindByDeliveryRange(ctx context.Context, from, to time.Time) ([]*domain.DeliverySlot, error) {
	return r.query(ctx, `
		SELECT `+slotColumns+` FROM delivery_slots
		WHERE delivery_at >= $1 AND delivery_at <= $2
		ORDER BY delivery_at, created_at`, from, to)
}

func (r *PostgresSlotRepository) query(ctx context.Context, query string, args ...any) ([]*domain.DeliverySlot, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	snapshots, err := pgx.CollectRows(rows, scanPostgresSlot)
	if err != nil || len(snapshots) == 0 {
		return nil, err
	}

	ids := make([]string, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID.String()
	}
	entryRows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT id, slot_id, meal_id, status FROM delivery_slot_meals
		WHERE slot_id = ANY($1::uuid[])
		ORDER BY slot_id, position`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer entryRows.Close()

	entries := make(map[uuid.UUID][]*domain.MealEntry, len(snapshots))
	for entryRows.Next() {
		var (
			id, slotID, mealID uuid.UUID
			status             string
		)
		if err := entryRows.Scan(&id, &slotID, &mealID, &status); err != nil {
			return nil, err
		}
		entries[slotID] = append(entries[slotID], domain.RehydrateMealEntry(id, mealID, domain.MealStatus(status)))
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}

	slots := make([]*domain.DeliverySlot, len(snapshots))
	for i, s := range snapshots {
		s.Meals = entries[s.ID]
		slots[i] = domain.RehydrateDeliverySlot(s)
	}
	return slots, nil
}

func scanPostgresSlot(row pgx.CollectableRow) (domain.SlotSnapshot, error) {
	var (
		s                    domain.SlotSnapshot
		deliveryType, status string
		scheduledTime        string
		address              *string
	)
	err := row.Scan(&s.ID, &s.DeliveryAt, &deliveryType, &s.CustomerName, &scheduledTime,
		&address, &status, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if s.ScheduledTime, err = domain.ParseTimeOfDay(scheduledTime); err != nil {
		return s, fmt.Errorf("delivery slot %s: %w", s.ID, err)
	}
	s.DeliveryType = domain.DeliveryType(deliveryType)
	s.Status = domain.SlotStatus(status)
	if address != nil {
		s.Address = *address
	}
	return s, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
