package models

import "errors"

// Storage error constants shared by every repository implementation.
var (
	// ErrNotFound indicates the targeted record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint (slug, name, username) was violated.
	ErrDuplicate = errors.New("duplicate key")

	// ErrReferenced indicates a record cannot be removed while others point at it.
	ErrReferenced = errors.New("still referenced")
)
