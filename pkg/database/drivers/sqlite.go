//go:build (netbsd && amd64) || ios || freebsd || darwin || (linux && riscv64) || (linux && ppc64le) || (linux && s390x) || (linux && amd64) || (linux && arm64) || (linux && 386) || android || (openbsd && amd64) || (openbsd && arm64)

package drivers

import (
	// Pull in the modernc SQLite driver for binaries that import this
	// package. Tests that want SQLite import it themselves, so plain
	// go test runs elsewhere in the tree stay light.
	_ "modernc.org/sqlite"
)
