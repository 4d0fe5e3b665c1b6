package database

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCode is returned when a bill session code is already taken.
	ErrDuplicateCode = errors.New("duplicate session code")
)
