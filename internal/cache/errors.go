package cache

import "errors"

var (
	// ErrCacheMiss indicates the requested key was not found or has expired
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrInvalidTTL indicates a non-positive TTL was passed to Set or Update
	ErrInvalidTTL = errors.New("cache: ttl must be positive")
)
