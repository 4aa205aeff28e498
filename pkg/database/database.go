package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
)

// Database wraps the single database/sql handle used by the probe.
type Database struct {
	DB     *sql.DB // The underlying SQL database connection
	Driver string  // Normalized driver name so SQL builders can stay declarative
	Table  string  // Fixture table name, validated at open time
}

// Config holds the configuration details for initializing the database.
type Config struct {
	DBType    string // The type of the database driver (e.g., "sqlite", "chai", or "pgx" (PostgreSQL))
	DBPath    string // The file path to the database file (for file-based databases)
	DBConn    string // Raw DSN for network drivers (pgx)
	DBHost    string // The host for PostgreSQL
	DBPort    int    // The port for PostgreSQL
	DBUser    string // The user for PostgreSQL
	DBPass    string // The password for PostgreSQL
	DBName    string // The name of the PostgreSQL database
	PGSSLMode string // The SSL mode for PostgreSQL
	Table     string // Fixture table name; defaults to "test_nulls"
}

// normalizeDBType trims and lowercases driver names so downstream switch blocks
// do not miss driver-specific handling just because a caller passed mixed case
// or incidental whitespace. Centralising the cleanup keeps the checks honest
// without sprinkling strings.ToLower everywhere.
func normalizeDBType(dbType string) string {
	return strings.ToLower(strings.TrimSpace(dbType))
}

// tableNamePattern is deliberately strict: the table name comes straight from
// a CLI flag and is spliced into DDL, so we only accept plain identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewDatabase opens DB and configures connection pooling.
// For embedded engines we force single-connection mode (no concurrent DB access).
func NewDatabase(config Config) (*Database, error) {
	driverName := normalizeDBType(config.DBType)

	table := strings.TrimSpace(config.Table)
	if table == "" {
		table = "test_nulls"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var dsn string
	switch driverName {
	case "sqlite", "chai", "genji":
		// File-based engines share the DSN shape. Chai and Genji manage
		// their own transaction and caching strategy, so no pragma tuning
		// happens here either way.
		dsn = config.DBPath
		if dsn == "" {
			dsn = fmt.Sprintf("nullbind-probe.%s", driverName)
		}
	case "duckdb":
		// The file is created on first open.
		dsn = config.DBPath
		if dsn == "" {
			dsn = "nullbind-probe.duckdb"
		}
	case "pgx":
		if strings.TrimSpace(config.DBConn) != "" {
			dsn = config.DBConn
		} else {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				config.DBUser, config.DBPass, config.DBHost, config.DBPort, config.DBName, config.PGSSLMode)
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.DBType)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening the database: %v", err)
	}

	// === CRITICAL: serialize embedded-engine access over a single underlying connection ===
	switch driverName {
	case "sqlite", "chai", "genji", "duckdb":
		// One physical connection; no concurrent statements at DB layer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		// Never recycle the single connection. Besides keeping the handle
		// stable for the whole run, this keeps a ":memory:" database alive
		// between statements.
		db.SetConnMaxLifetime(0)
	}

	// Cheap liveness probe with timeout so we don't hang at startup
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error connecting to the database: %v", err)
		}
	}

	log.Printf("Using database driver: %s with DSN: %s", driverName, dsn)

	return &Database{
		DB:     db,
		Driver: driverName,
		Table:  table,
	}, nil
}

// Close releases the underlying handle. Safe to call on a nil receiver so
// callers can defer it unconditionally right after NewDatabase.
func (db *Database) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// newPlaceholderGenerator returns a closure that produces the correct
// positional placeholder for the active driver: $1,$2,… for PostgreSQL,
// plain ? for everything else.
func newPlaceholderGenerator(dbType string) func() string {
	if normalizeDBType(dbType) == "pgx" {
		counter := 0
		return func() string {
			counter++
			return fmt.Sprintf("$%d", counter)
		}
	}
	return func() string { return "?" }
}
