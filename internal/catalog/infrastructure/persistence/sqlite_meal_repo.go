package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteMealRepository implements domain.Repository using SQLite.
type SQLiteMealRepository struct {
	db *sql.DB
}

// NewSQLiteMealRepository creates a new SQLite meal repository.
func NewSQLiteMealRepository(db *sql.DB) *SQLiteMealRepository {
	return &SQLiteMealRepository{db: db}
}

// Save inserts a meal.
func (r *SQLiteMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	s := meal.Snapshot()
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO meals (`+mealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Name, s.Description, s.Protein, s.Fat, s.Carbs, s.Calories,
		toNullString(s.ImageURL), boolToInt64(s.IsAvailable),
		sharedPersistence.FormatSQLiteTime(s.CreatedAt), sharedPersistence.FormatSQLiteTime(s.UpdatedAt),
	)
	return err
}

// FindByID finds a meal by its ID.
func (r *SQLiteMealRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	row := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = ?`, id.String())
	meal, err := scanSQLiteMeal(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return meal, err
}

// FindByIDs finds every meal whose ID is in ids.
func (r *SQLiteMealRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	query := fmt.Sprintf(`SELECT %s FROM meals WHERE id IN (%s)`, mealColumns, strings.Join(placeholders, ", "))
	return r.query(ctx, query, args...)
}

// FindAll returns every meal ordered by name.
func (r *SQLiteMealRepository) FindAll(ctx context.Context) ([]*domain.Meal, error) {
	return r.query(ctx, `SELECT `+mealColumns+` FROM meals ORDER BY name, created_at`)
}

func (r *SQLiteMealRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Meal, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []*domain.Meal
	for rows.Next() {
		meal, err := scanSQLiteMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMeal(row rowScanner) (*domain.Meal, error) {
	var (
		s                    domain.Snapshot
		id                   string
		imageURL             sql.NullString
		isAvailable          int64
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &s.Name, &s.Description, &s.Protein, &s.Fat, &s.Carbs, &s.Calories,
		&imageURL, &isAvailable, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("meal %q: %w", id, err)
	}
	if s.CreatedAt, err = sharedPersistence.ParseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = sharedPersistence.ParseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	s.ImageURL = imageURL.String
	s.IsAvailable = isAvailable != 0
	return domain.RehydrateMeal(s), nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
