package db

import "errors"

var (
	// ErrUnavailable is returned by every method when no database is
	// configured or the connection could not be opened. Callers degrade
	// instead of failing.
	ErrUnavailable = errors.New("database unavailable")

	// ErrNotFound is returned by updates that matched no row.
	ErrNotFound = errors.New("not found")
)
