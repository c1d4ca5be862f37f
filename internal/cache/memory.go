package cache

import (
	"context"
	"sync"
	"time"

	"github.com/notdulain/OAuth-Learning/internal/core"
)

type cacheItem[T any] struct {
	value     T
	expiresAt time.Time
}

// Compile-time interface check.
var _ core.Store[struct{}] = (*MemoryStore[struct{}])(nil)

// MemoryStore implements core.Store with in-memory storage.
// Uses lazy expiration (expired entries are evicted on access).
// A single mutex guards every operation so Take is a true read-and-delete.
type MemoryStore[T any] struct {
	mu    sync.Mutex
	items map[string]cacheItem[T]
	now   func() time.Time
}

// Option configures a MemoryStore.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewMemoryStore creates a new memory store instance.
func NewMemoryStore[T any](opts ...Option) *MemoryStore[T] {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return &MemoryStore[T]{
		items: make(map[string]cacheItem[T]),
		now:   o.now,
	}
}

// Get retrieves a value, evicting it when expired.
func (m *MemoryStore[T]) Get(ctx context.Context, key string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	item, exists := m.items[key]
	if !exists {
		return zero, ErrCacheMiss
	}

	if m.expired(item) {
		delete(m.items, key)
		return zero, ErrCacheMiss
	}

	return item.value, nil
}

// Set stores a value with TTL.
func (m *MemoryStore[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = cacheItem[T]{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}

	return nil
}

// Take removes the entry and returns it if it had not expired.
func (m *MemoryStore[T]) Take(ctx context.Context, key string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	item, exists := m.items[key]
	if !exists {
		return zero, ErrCacheMiss
	}
	delete(m.items, key)

	if m.expired(item) {
		return zero, ErrCacheMiss
	}

	return item.value, nil
}

// Update rewrites a live entry in place. A non-positive TTL from fn removes
// the entry and reports ErrInvalidTTL.
func (m *MemoryStore[T]) Update(
	ctx context.Context,
	key string,
	fn func(T) (T, time.Duration),
) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	item, exists := m.items[key]
	if !exists {
		return zero, ErrCacheMiss
	}
	if m.expired(item) {
		delete(m.items, key)
		return zero, ErrCacheMiss
	}

	value, ttl := fn(item.value)
	if ttl <= 0 {
		delete(m.items, key)
		return zero, ErrInvalidTTL
	}

	m.items[key] = cacheItem[T]{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	return value, nil
}

// Delete removes a key from the store.
func (m *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Sweep evicts expired entries.
func (m *MemoryStore[T]) Sweep(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, item := range m.items {
		if m.expired(item) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including ones not yet swept.
func (m *MemoryStore[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// expired reports whether item has reached its expiry. Callers hold mu.
func (m *MemoryStore[T]) expired(item cacheItem[T]) bool {
	return !m.now().Before(item.expiresAt)
}
