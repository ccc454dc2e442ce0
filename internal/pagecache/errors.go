// Package pagecache stores encoded page payloads in a shared key/value
// cache and serves repositories read-through: hit → decode, miss or
// failure → build live and write back. This file defines the cache error
// taxonomy.
package pagecache

import "errors"

var (
	// ErrCacheMiss means the key is absent. Not a failure; it triggers
	// the live build path.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable means the cache store could not be reached.
	// Treated like a miss by readers; writes are skipped.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
