//go:build !test

// This file wires in heavyweight SQL drivers only for production builds.
// go test/go vet exclude it via the build tag so package tests register
// exactly the drivers they need themselves.
package main

import "nullbind-probe/pkg/database/drivers"

func init() {
	// Touch the drivers package so its init functions register SQL
	// backends before the probe opens a connection.
	drivers.Ready()
}
