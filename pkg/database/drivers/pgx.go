package drivers

import (
	// Register pgx's database/sql adapter under the "pgx" driver name.
	// PostgreSQL is the backend the probe was written against, so unlike the
	// embedded engines this registration carries no platform build tags.
	_ "github.com/jackc/pgx/v5/stdlib"
)
