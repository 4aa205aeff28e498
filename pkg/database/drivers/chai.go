//go:build dragonfly || ios || freebsd || darwin || (linux && ppc64) || (linux && ppc64le) || (linux && s390x) || (linux && amd64) || (linux && mips64) || (linux && mips64le) || (linux && arm64) || android || (windows && amd64) || (windows && arm64)

package drivers

import (
	"database/sql"
	"database/sql/driver"

	sqlite "modernc.org/sqlite"
)

// init registers the "chai" driver name with database/sql. Chai files are
// SQLite-compatible, so the modernc backend serves both names and the build
// stays CGO-free.
func init() {
	sql.Register("chai", newChaiDriver())
}

// newChaiDriver returns a driver.Driver backed by modernc SQLite. The helper
// keeps the registration explicit and testable in isolation.
func newChaiDriver() driver.Driver {
	return &sqlite.Driver{}
}
