package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	_ "modernc.org/sqlite"
)

// openTestDatabase opens an in-memory SQLite database. The single-connection
// pool cap in NewDatabase keeps the memory database alive across statements.
func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(Config{DBType: "sqlite", DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strptr(s string) *string { return &s }

// TestInsertBothPresent checks the baseline case: two bound text values
// persist exactly as given.
func TestInsertBothPresent(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	if err := db.PrepareSchema(ctx); err != nil {
		t.Fatalf("prepare schema: %v", err)
	}

	id, err := db.InsertContact(ctx, strptr("Alice"), strptr("alice@example.com"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Errorf("expected a server-assigned id, got 0")
	}

	rows, err := db.ReadBack(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("read back %d rows, want 1", len(rows))
	}
	if rows[0].Name == nil || *rows[0].Name != "Alice" {
		t.Errorf("name = %v, want Alice", rows[0].Name)
	}
	if rows[0].Email == nil || *rows[0].Email != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", rows[0].Email)
	}
}

// TestInsertAbsentValues is the regression the fixture guards against: an
// absent bound parameter must come back from the server as NULL, never as
// an error and never as an empty string.
func TestInsertAbsentValues(t *testing.T) {
	tests := []struct {
		label string
		name  *string
		email *string
	}{
		{"one value absent", strptr("Bob"), nil},
		{"both values absent", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			ctx := context.Background()
			db := openTestDatabase(t)

			if err := db.PrepareSchema(ctx); err != nil {
				t.Fatalf("prepare schema: %v", err)
			}
			if _, err := db.InsertContact(ctx, tc.name, tc.email); err != nil {
				t.Fatalf("insert with absent values: %v", err)
			}

			rows, err := db.ReadBack(ctx)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("read back %d rows, want 1", len(rows))
			}

			got := rows[0]
			if (got.Name == nil) != (tc.name == nil) {
				t.Errorf("name nil-ness = %v, want %v", got.Name == nil, tc.name == nil)
			}
			if (got.Email == nil) != (tc.email == nil) {
				t.Errorf("email nil-ness = %v, want %v", got.Email == nil, tc.email == nil)
			}
			if got.Name != nil && tc.name != nil && *got.Name != *tc.name {
				t.Errorf("name = %q, want %q", *got.Name, *tc.name)
			}
		})
	}
}

// TestReadBackOrder checks rows come back in server-assigned id order.
func TestReadBackOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	if err := db.PrepareSchema(ctx); err != nil {
		t.Fatalf("prepare schema: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := db.InsertContact(ctx, strptr(fmt.Sprintf("user-%d", i)), nil); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	rows, err := db.ReadBack(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("read back %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].ID <= rows[i-1].ID {
			t.Errorf("ids out of order: %d after %d", rows[i].ID, rows[i-1].ID)
		}
	}
}

// TestRepeatedRunsLeaveNoTable covers the teardown contract: running the
// full prepare/insert/drop sequence twice leaves no residual table.
func TestRepeatedRunsLeaveNoTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	for run := 0; run < 2; run++ {
		if err := db.PrepareSchema(ctx); err != nil {
			t.Fatalf("run %d prepare: %v", run, err)
		}
		if _, err := db.InsertContact(ctx, strptr("Alice"), nil); err != nil {
			t.Fatalf("run %d insert: %v", run, err)
		}
		if err := db.DropSchema(ctx); err != nil {
			t.Fatalf("run %d drop: %v", run, err)
		}

		exists, err := db.TableExists(ctx)
		if err != nil {
			t.Fatalf("run %d table check: %v", run, err)
		}
		if exists {
			t.Fatalf("run %d left table %s behind", run, db.Table)
		}
	}
}

// TestBulkInsertFallback exercises the non-PostgreSQL bulk path, which loops
// over single inserts but must preserve absent values the same way.
func TestBulkInsertFallback(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	if err := db.PrepareSchema(ctx); err != nil {
		t.Fatalf("prepare schema: %v", err)
	}

	n, err := db.BulkInsertContacts(ctx, [][2]*string{
		{strptr("Dana"), nil},
		{nil, strptr("erin@example.com")},
	})
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if n != 2 {
		t.Errorf("bulk inserted %d rows, want 2", n)
	}

	rows, err := db.ReadBack(ctx)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("read back %d rows, want 2", len(rows))
	}
	if rows[0].Email != nil {
		t.Errorf("first row email = %v, want NULL", *rows[0].Email)
	}
	if rows[1].Name != nil {
		t.Errorf("second row name = %v, want NULL", *rows[1].Name)
	}
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDatabase(Config{DBType: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNewDatabaseRejectsBadTableName(t *testing.T) {
	if _, err := NewDatabase(Config{DBType: "sqlite", DBPath: ":memory:", Table: "users; DROP TABLE users"}); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

// TestPlaceholderGenerator pins the dialect split: PostgreSQL numbers its
// placeholders, everything else uses bare question marks.
func TestPlaceholderGenerator(t *testing.T) {
	next := newPlaceholderGenerator("pgx")
	if a, b := next(), next(); a != "$1" || b != "$2" {
		t.Errorf("pgx placeholders = %s, %s, want $1, $2", a, b)
	}
	next = newPlaceholderGenerator("sqlite")
	if a, b := next(), next(); a != "?" || b != "?" {
		t.Errorf("sqlite placeholders = %s, %s, want ?, ?", a, b)
	}
}

// TestClassifyError checks both tiers: PostgreSQL errors surface their
// SQLSTATE, everything else reports the concrete root type.
func TestClassifyError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "08P01", Severity: "ERROR"}
	wrapped := fmt.Errorf("insert into test_nulls: %w", pgErr)
	if got := ClassifyError(wrapped); got != "postgres 08P01 (ERROR)" {
		t.Errorf("ClassifyError(PgError) = %q", got)
	}

	plain := fmt.Errorf("outer: %w", errors.New("driver rejected the bind"))
	if got := ClassifyError(plain); got != "*errors.errorString" {
		t.Errorf("ClassifyError(plain) = %q", got)
	}

	if got := ClassifyError(nil); got != "" {
		t.Errorf("ClassifyError(nil) = %q, want empty", got)
	}
}
