package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/gexftool/pkg/buildinfo"
	"github.com/matzehuels/gexftool/pkg/errors"
)

// Defaults for NewFetcher.
const (
	DefaultMaxBytes = 64 << 20
	DefaultTimeout  = 30 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Fetcher downloads documents. The zero value is not usable; use
// [NewFetcher].
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
	Attempts int
	Delay    time.Duration
}

// NewFetcher returns a fetcher with the default limits.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		MaxBytes: DefaultMaxBytes,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// IsURL reports whether source names an http or https resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Get downloads rawURL and returns its body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL, "http", "https"); err != nil {
		return nil, err
	}
	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		data, err := f.get(ctx, rawURL)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", rawURL)
	}
	req.Header.Set("Accept", "application/gexf+xml, application/xml;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", buildinfo.Name+"/"+buildinfo.Version)

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeIO, err, "fetch %s", rawURL)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeFileNotFound, "fetch %s: %s", rawURL, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: errors.New(errors.ErrCodeIO, "fetch %s: %s", rawURL, resp.Status)}
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeIO, "fetch %s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeIO, err, "read %s", rawURL)}
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetch %s: body exceeds %s", rawURL, formatBytes(f.MaxBytes))
	}
	return data, nil
}

func formatBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MiB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
