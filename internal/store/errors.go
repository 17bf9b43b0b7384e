package store

import "errors"

// ErrNotFound indicates the referenced entity is not present in the store.
var ErrNotFound = errors.New("entity not found")
