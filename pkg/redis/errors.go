package redis

import "errors"

var (
	// ErrCacheDisabled reports a cache call made while redis.enabled is false
	ErrCacheDisabled = errors.New("redis cache is disabled")

	ErrClientNotInitialized = errors.New("redis client not initialized")

	// ErrKeyNotFound is a plain cache miss
	ErrKeyNotFound = errors.New("cache key not found")

	ErrConnectionFailed = errors.New("redis connection failed")

	// ErrCircuitOpen means the breaker refused the call without contacting Redis
	ErrCircuitOpen = errors.New("redis circuit breaker open")

	// ErrSerializationFailed wraps msgpack encode and decode failures
	ErrSerializationFailed = errors.New("cache serialization failed")
)

// IsCacheDisabled reports whether err means the cache is switched off
func IsCacheDisabled(err error) bool {
	return errors.Is(err, ErrCacheDisabled)
}

// IsKeyNotFound reports whether err is a cache miss
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}
