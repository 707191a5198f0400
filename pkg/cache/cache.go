// Package cache stores decoded documents and rendered snapshots.
//
// All backends implement [Cache]. Keys come from a [Keyer] so that a
// document is found again by the SHA-256 of its bytes regardless of the
// path it was read from. Use [Open] to pick a backend by name:
//
//	c, err := cache.Open(ctx, cache.Options{Backend: "file", Dir: dir})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default lifetimes of cache entries.
const (
	TTLDocument = 7 * 24 * time.Hour
	TTLSnapshot = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. Get reports a miss with
// ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey is the key of a decoded document with the given content hash.
	DocumentKey(docHash string) string
	// SnapshotKey is the key of a rendered graph state.
	SnapshotKey(docHash string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts are the render inputs that distinguish snapshots of the
// same document.
type SnapshotKeyOpts struct {
	Step   int    `json:"step"`
	Format string `json:"format"`
}

// DefaultKeyer produces "doc:<hash>" and "snapshot:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey implements Keyer.
func (DefaultKeyer) DocumentKey(docHash string) string {
	return "doc:" + docHash
}

// SnapshotKey implements Keyer.
func (DefaultKeyer) SnapshotKey(docHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", docHash, opts)
}

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options select and configure a backend.
type Options struct {
	Backend  string
	Dir      string // file
	RedisURL string // redis
	MongoURI string // mongo
	Database string // mongo, defaults to "gexftool"
}

// Open returns the backend named by opts.Backend. An empty name means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile, "":
		c, err = asCache(NewFileCache(opts.Dir))
	case BackendRedis:
		c, err = asCache(NewRedisCache(ctx, opts.RedisURL))
	case BackendMongo:
		db := opts.Database
		if db == "" {
			db = "gexftool"
		}
		c, err = asCache(NewMongoCache(ctx, opts.MongoURI, db, "cache"))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return c, nil
}

func asCache[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
