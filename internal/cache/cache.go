// Package cache stores a solve response keyed by a hash of the raw request
// body, so a byte-identical repeated request within its TTL is served
// without re-running the search engine. The HTTP layer is responsible for
// marking a cache hit via a response header; this package never leaks that
// concern into the cached bytes, which stay byte-identical to a freshly
// computed response.
package cache

import "context"

// ResponseCache is the cache boundary the HTTP API writes through.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
