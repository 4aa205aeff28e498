package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Contact is one row of the fixture table. Name and Email stay pointers so
// an absent value survives the round trip as nil instead of collapsing into
// an empty string.
type Contact struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// PrepareSchema drops the fixture table if a previous run left it behind and
// recreates it empty. The id column is server-generated; name and email are
// nullable on purpose because NULL transport is the behaviour under study.
func (db *Database) PrepareSchema(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database unavailable")
	}

	if _, err := db.DB.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", db.Table)); err != nil {
		return fmt.Errorf("drop stale table: %w", err)
	}

	// Statements run one at a time: not every driver accepts batched DDL
	// in a single Exec.
	var statements []string
	switch db.Driver {
	case "pgx":
		statements = []string{fmt.Sprintf(`CREATE TABLE %s (
  id    BIGSERIAL PRIMARY KEY,
  name  TEXT,
  email TEXT
)`, db.Table)}
	case "duckdb":
		// DuckDB has no SERIAL; a sequence plus DEFAULT nextval(...) gives
		// the same server-assigned ids.
		seq := db.Table + "_id_seq"
		statements = []string{
			fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", seq),
			fmt.Sprintf(`CREATE TABLE %s (
  id    BIGINT PRIMARY KEY DEFAULT nextval('%s'),
  name  TEXT,
  email TEXT
)`, db.Table, seq),
		}
	default:
		// SQLite-compatible engines: INTEGER PRIMARY KEY aliases the rowid,
		// so inserts get an auto-assigned id without AUTOINCREMENT.
		statements = []string{fmt.Sprintf(`CREATE TABLE %s (
  id    INTEGER PRIMARY KEY,
  name  TEXT,
  email TEXT
)`, db.Table)}
	}

	for _, stmt := range statements {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", db.Table, err)
		}
	}
	return nil
}

// DropSchema removes the fixture table so repeated runs start from a clean
// server. Dropping an already-missing table is not an error.
func (db *Database) DropSchema(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database unavailable")
	}
	if _, err := db.DB.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", db.Table)); err != nil {
		return fmt.Errorf("drop table %s: %w", db.Table, err)
	}
	return nil
}

// nullableText converts an optional string into a bind argument: nil means
// SQL NULL, anything else travels as the text itself.
func nullableText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// InsertContact executes one parameterized insert with positional
// placeholders. A nil name or email must reach the server as a column NULL;
// whether the driver honours that is exactly what the caller is probing, so
// we never substitute defaults or skip columns on its behalf.
//
// The returned id is server-assigned. PostgreSQL reports it via RETURNING;
// the other engines go through LastInsertId. Engines that support neither
// report id 0, which callers treat as "unknown" rather than an error.
func (db *Database) InsertContact(ctx context.Context, name, email *string) (int64, error) {
	if db == nil || db.DB == nil {
		return 0, fmt.Errorf("database unavailable")
	}

	nextPlaceholder := newPlaceholderGenerator(db.Driver)
	columns := fmt.Sprintf("INSERT INTO %s (name, email) VALUES (%s, %s)",
		db.Table, nextPlaceholder(), nextPlaceholder())

	if db.Driver == "pgx" {
		var id int64
		query := columns + " RETURNING id"
		if err := db.DB.QueryRowContext(ctx, query, nullableText(name), nullableText(email)).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", db.Table, err)
		}
		return id, nil
	}

	res, err := db.DB.ExecContext(ctx, columns, nullableText(name), nullableText(email))
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", db.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		// Some drivers cannot report the id; the insert itself still counts.
		return 0, nil
	}
	return id, nil
}

// StreamContacts reads back every persisted row in id order and pushes them
// over a channel so callers can render progressively. The error channel
// carries at most one value: nil on clean completion, the failure otherwise.
func (db *Database) StreamContacts(ctx context.Context) (<-chan Contact, <-chan error) {
	results := make(chan Contact)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		query := fmt.Sprintf("SELECT id, name, email FROM %s ORDER BY id", db.Table)
		rows, err := db.DB.QueryContext(ctx, query)
		if err != nil {
			errs <- fmt.Errorf("read back %s: %w", db.Table, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id    int64
				name  sql.NullString
				email sql.NullString
			)
			if err := rows.Scan(&id, &name, &email); err != nil {
				errs <- fmt.Errorf("scan row: %w", err)
				return
			}

			contact := Contact{ID: id}
			if name.Valid {
				v := name.String
				contact.Name = &v
			}
			if email.Valid {
				v := email.String
				contact.Email = &v
			}

			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case results <- contact:
			}
		}

		if err := rows.Err(); err != nil {
			errs <- fmt.Errorf("iterate rows: %w", err)
			return
		}

		errs <- nil
	}()

	return results, errs
}

// ReadBack collects the streamed rows into a slice for callers that do not
// need progressive rendering (the console report, the JSON endpoint).
func (db *Database) ReadBack(ctx context.Context) ([]Contact, error) {
	results, errs := db.StreamContacts(ctx)
	contacts := make([]Contact, 0, 8)
	for c := range results {
		contacts = append(contacts, c)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return contacts, nil
}

// TableExists reports whether the fixture table is currently present. The
// teardown contract says repeated runs must leave nothing behind, and this
// is the check tests use to hold us to it.
func (db *Database) TableExists(ctx context.Context) (bool, error) {
	if db == nil || db.DB == nil {
		return false, fmt.Errorf("database unavailable")
	}

	var query string
	switch db.Driver {
	case "pgx":
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1"
	case "duckdb":
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?"
	default:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	}

	var n int64
	if err := db.DB.QueryRowContext(ctx, query, strings.ToLower(db.Table)).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", db.Table, err)
	}
	return n > 0, nil
}
