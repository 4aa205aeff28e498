//go:build cgo && duckdb && (linux || darwin || windows) && (amd64 || arm64)

// DuckDB registration stays behind a build tag so default builds remain
// CGO-free; the Go driver links the C/C++ engine. Enable with:
//
//	CGO_ENABLED=1 go build -tags duckdb
package drivers

import (
	_ "github.com/marcboeker/go-duckdb"
)
