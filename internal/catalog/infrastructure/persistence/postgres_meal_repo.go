package persistence

import (
	"context"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const mealColumns = `id, name, description, protein, fat, carbs, calories, image_url, is_available, created_at, updated_at`

// PostgresMealRepository implements domain.Repository using PostgreSQL.
type PostgresMealRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMealRepository creates a new PostgreSQL meal repository.
func NewPostgresMealRepository(pool *pgxpool.Pool) *PostgresMealRepository {
	return &PostgresMealRepository{pool: pool}
}

// Save inserts a meal.
func (r *PostgresMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	s := meal.Snapshot()
	var imageURL *string
	if s.ImageURL != "" {
		imageURL = &s.ImageURL
	}

	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO meals (`+mealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Name, s.Description, s.Protein, s.Fat, s.Carbs, s.Calories,
		imageURL, s.IsAvailable, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// FindByID finds a meal by its ID.
func (r *PostgresMealRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1`, id)
	meal, err := scanPostgresMeal(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return meal, err
}

// FindByIDs finds every meal whose ID is in ids.
func (r *PostgresMealRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = ANY($1::uuid[])`, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Meal, error) {
		return scanPostgresMeal(row)
	})
}

// FindAll returns every meal ordered by name.
func (r *PostgresMealRepository) FindAll(ctx context.Context) ([]*domain.Meal, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx,
		`SELECT `+mealColumns+` FROM meals ORDER BY name, created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Meal, error) {
		return scanPostgresMeal(row)
	})
}

func scanPostgresMeal(row pgx.Row) (*domain.Meal, error) {
	var (
		s        domain.Snapshot
		imageURL *string
	)
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Protein, &s.Fat, &s.Carbs, &s.Calories,
		&imageURL, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageURL != nil {
		s.ImageURL = *imageURL
	}
	return domain.RehydrateMeal(s), nil
}
