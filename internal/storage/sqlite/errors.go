// ABOUTME: Sentinel errors returned by the SQLite storage layer
// ABOUTME: Callers match them with errors.Is
package sqlite

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus is returned for a schedule status other than done or skipped
	ErrInvalidStatus = errors.New("invalid schedule status")
	// ErrInvalidRow is returned when an import batch contains a row that fails validation
	ErrInvalidRow = errors.New("invalid plan row")
	// ErrInvalidInput is returned for malformed profile, settings or wrong-deed input
	ErrInvalidInput = errors.New("invalid input")
)
