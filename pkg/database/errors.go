package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyError boils a failed statement down to a short class string the
// per-case report can print next to the message. PostgreSQL failures carry a
// SQLSTATE worth surfacing verbatim; for everything else the concrete error
// type is the most useful hint about which layer rejected the statement
// (driver-side type mapping versus a server response).
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("postgres %s (%s)", pgErr.Code, pgErr.Severity)
	}

	// Unwrap our own fmt.Errorf layers so the class names the root cause,
	// not the wrapping.
	root := err
	for {
		inner := errors.Unwrap(root)
		if inner == nil {
			break
		}
		root = inner
	}
	return fmt.Sprintf("%T", root)
}
