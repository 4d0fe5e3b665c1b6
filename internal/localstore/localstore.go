// Package localstore defines the device-local persistent key-value port used
// by the draft, cache and session components, plus its in-memory and Redis
// adapters. The SQLite adapter lives in the database package.
package localstore

import (
	"context"
	"errors"
)

// ErrCorrupt marks a stored value that could not be deserialized.
var ErrCorrupt = errors.New("serialization corruption")

// Store is a flat string key-value store. Implementations must treat a
// multi-key Remove as a single operation with respect to subsequent reads.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes every listed key. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
}
