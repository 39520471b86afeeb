// Package kvcache is the durable key-value cache holding serialized collections.
// One key stores one whole collection; there are no partial updates.
package kvcache

import (
	"context"

	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a closed cache
var ErrClosed = errors.New("kvcache: closed")

// Cache stores string values by key
type Cache interface {
	// Get returns the value and whether the key is present
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value stored under key
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
	// Keys lists present keys in ascending order
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Versioned is implemented by caches that keep a monotonic version per key.
// Every Set, Remove or CompareAndSet bumps the version, including on absent keys.
type Versioned interface {
	Version(ctx context.Context, key string) (uint64, error)
	// CompareAndSet stores value only when the current version equals version
	// and returns the new version. A mismatch returns a *domain.ConflictError.
	CompareAndSet(ctx context.Context, key string, version uint64, value string) (uint64, error)
}
