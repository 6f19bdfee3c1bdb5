package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateContent is returned when a content item with the same
	// external item id is already persisted. Ingestion treats this as
	// "already ingested", not as a failure.
	ErrDuplicateContent = errors.New("content item already ingested")
)
