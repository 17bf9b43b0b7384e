package persist

import "errors"

var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt indicates a stored value could not be decoded.
	ErrCorrupt = errors.New("persisted value is corrupt")
)
