package database

import (
	"fmt"
	"strings"
)

// Driver names a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// ResolveDriver picks the backend for a configured driver name. An empty or
// "auto" name selects SQLite when there is no URL, matching local mode.
func ResolveDriver(name, url string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if url == "" || strings.HasPrefix(url, "file:") {
			return DriverSQLite, nil
		}
		return DriverPostgres, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", name)
	}
}
