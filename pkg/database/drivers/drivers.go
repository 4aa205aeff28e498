// Package drivers groups database/sql driver registrations so heavy
// dependencies stay out of lightweight go test/go vet runs unless a
// binary explicitly imports this package.
package drivers

// Ready is a no-op that main packages call from init so the reason for
// the import is visible at the call site instead of hiding behind a
// blank identifier.
func Ready() {}
