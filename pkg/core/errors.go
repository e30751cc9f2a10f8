package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned by Storage.Get when the key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrReadOnly is returned by writes on a storage opened read-only.
	ErrReadOnly = errors.New("storage is in read-only mode")
)
