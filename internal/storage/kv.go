// Package storage defines the local key-value store that backs persisted
// client state such as favourites.
package storage

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrStoreClosed = errors.New("kv store is closed")
)

// Namespace is the bucket (or table prefix) all marquee keys live under.
const Namespace = "marquee"

// KV is a flat key-value store. Values are opaque bytes; callers own the
// encoding.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store.
	Close() error
}
