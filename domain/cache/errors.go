package cache

import "errors"

var (
	// ErrInvalidKey indicates the key is empty or otherwise unusable.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrConnectionFailed indicates the cache backend is unreachable.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout indicates a cache operation timed out.
	ErrOperationTimeout = errors.New("cache operation timeout")
)
