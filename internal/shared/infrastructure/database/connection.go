package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Connection is an open database handle. Repositories never use it
// directly; they receive the driver-native pool from Pool() or DB().
type Connection interface {
	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
	// Close releases the underlying pool.
	Close() error
	// Driver returns the driver type for this connection.
	Driver() Driver
}

// Config holds database configuration.
type Config struct {
	// Driver forces a backend. Empty or "auto" detects it from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the SQLite database file. Defaults to ~/.mealslot/data.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool size.
	MaxConns int
}

type connector func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]connector{}

// RegisterPostgresDriver registers the PostgreSQL connection factory.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[DriverPostgres] = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[DriverSQLite] = fn
}

// NewConnection opens a connection for the configured driver.
// The driver packages must be imported for their init registration.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := ResolveDriver(string(cfg.Driver), cfg.URL)
	if err != nil {
		return nil, err
	}

	connect, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return connect(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".mealslot", "data.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
