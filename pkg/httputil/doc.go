// Package httputil downloads GEXF documents over HTTP.
//
// # Fetching
//
// [Fetcher] performs a GET with a bounded body size and maps failures to
// gexftool error codes:
//
//   - 404: FILE_NOT_FOUND
//   - other 4xx: IO_ERROR, not retried
//   - 5xx, 429 and network errors: IO_ERROR, retried
//   - body over the size limit: INVALID_INPUT
//
// Usage:
//
//	f := httputil.NewFetcher()
//	data, err := f.Get(ctx, "https://example.org/network.gexf")
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff while it fails
// with a [RetryableError]. Defaults are 3 attempts starting at 1 second.
package httputil
