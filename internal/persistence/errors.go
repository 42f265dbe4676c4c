package persistence

import "errors"

// Domain errors for the persistence package.
var (
	// ErrSectionNotFound is returned when a device section has never been stored.
	ErrSectionNotFound = errors.New("persistence: section not found")

	// ErrNoRepository is returned by Flush when the store is memory-only.
	ErrNoRepository = errors.New("persistence: no repository configured")
)
