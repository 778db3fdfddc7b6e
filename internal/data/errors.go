package data

import "errors"

// ErrNoUpdates is returned when a batched write is called with no updates.
var ErrNoUpdates = errors.New("no job updates to apply")
