package core

import (
	"context"
	"time"
)

// Store[T] is a volatile key-value registry with per-entry expiry.
// Expired entries are treated as absent and evicted on access.
type Store[T any] interface {
	// Get returns the value stored under key.
	// Returns cache.ErrCacheMiss if the key does not exist or has expired.
	Get(ctx context.Context, key string) (T, error)

	// Set stores a value with TTL, replacing any existing entry.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// Take atomically reads and removes the entry under key.
	// The entry is removed even when it has already expired, in which case
	// cache.ErrCacheMiss is returned. At most one caller observes a value.
	Take(ctx context.Context, key string) (T, error)

	// Update replaces the entry under key with the result of fn while holding
	// the store lock. fn returns the new value and its TTL from now.
	Update(ctx context.Context, key string, fn func(T) (T, time.Duration)) (T, error)

	// Delete removes the entry under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Sweep evicts every expired entry and returns how many were removed.
	Sweep(ctx context.Context) int

	// Len returns the number of entries, expired or not.
	Len() int
}
