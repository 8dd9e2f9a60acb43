package app

import (
	"database/sql"
	"fmt"

	catalogDomain "github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	catalogPersistence "github.com/felixgeelhaar/mealslot/internal/catalog/infrastructure/persistence"
	deliveryDomain "github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	deliveryPersistence "github.com/felixgeelhaar/mealslot/internal/delivery/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// MealRepository creates a meal repository for the configured driver.
func (f *RepositoryFactory) MealRepository() (catalogDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return catalogPersistence.NewPostgresMealRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return catalogPersistence.NewSQLiteMealRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// SlotRepository creates a delivery slot repository for the configured driver.
func (f *RepositoryFactory) SlotRepository() (deliveryDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return deliveryPersistence.NewPostgresSlotRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return deliveryPersistence.NewSQLiteSlotRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// AttemptRepository creates a reschedule attempt repository for the configured driver.
func (f *RepositoryFactory) AttemptRepository() (deliveryDomain.AttemptRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return deliveryPersistence.NewPostgresAttemptRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return deliveryPersistence.NewSQLiteAttemptRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return outbox.NewPostgresRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return outbox.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UnitOfWork creates the transaction boundary shared by the repositories above.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return sharedPersistence.NewPostgresUnitOfWork(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return sharedPersistence.NewSQLiteUnitOfWork(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// postgresConnection is implemented by the PostgreSQL connection.
type postgresConnection interface {
	Pool() *pgxpool.Pool
}

// sqliteConnection is implemented by the SQLite connection.
type sqliteConnection interface {
	DB() *sql.DB
}

func (f *RepositoryFactory) getPostgresPool() (*pgxpool.Pool, error) {
	pg, ok := f.conn.(postgresConnection)
	if !ok {
		return nil, fmt.Errorf("connection does not expose a PostgreSQL pool: %T", f.conn)
	}
	return pg.Pool(), nil
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	lite, ok := f.conn.(sqliteConnection)
	if !ok {
		return nil, fmt.Errorf("connection does not expose a SQLite database: %T", f.conn)
	}
	return lite.DB(), nil
}
