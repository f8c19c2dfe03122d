package store

import "errors"

// ErrNotFound is returned when a key is not cached.
var ErrNotFound = errors.New("store: not cached")
