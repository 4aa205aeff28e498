package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// BulkInsertContacts pushes a batch of optional-valued rows through
// PostgreSQL's COPY protocol instead of the extended-query bind path. The
// probe uses it as a control experiment: when a driver rejects NULL binds on
// a parameterized insert but the same rows arrive intact over COPY, the
// defect sits in bind-time type inference rather than in value transfer.
//
// Engines without COPY fall back to row-by-row inserts so the batch case
// still runs everywhere the probe does.
func (db *Database) BulkInsertContacts(ctx context.Context, rows [][2]*string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if db == nil || db.DB == nil {
		return 0, fmt.Errorf("database unavailable")
	}

	if db.Driver != "pgx" {
		var inserted int64
		for _, r := range rows {
			if _, err := db.InsertContact(ctx, r[0], r[1]); err != nil {
				return inserted, err
			}
			inserted++
		}
		return inserted, nil
	}

	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("open postgres connection: %w", err)
	}
	defer conn.Close()

	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		values = append(values, []interface{}{
			nullableText(r[0]), nullableText(r[1]),
		})
	}

	var copied int64
	copyErr := conn.Raw(func(driverConn any) error {
		direct, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected postgres driver %T", driverConn)
		}
		n, err := direct.Conn().CopyFrom(
			ctx,
			pgx.Identifier{db.Table},
			[]string{"name", "email"},
			pgx.CopyFromRows(values),
		)
		copied = n
		return err
	})
	if copyErr != nil {
		return 0, fmt.Errorf("copy rows into %s: %w", db.Table, copyErr)
	}
	return copied, nil
}
