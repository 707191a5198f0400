// Package config loads gexftool's optional TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/gexftool/config.toml (or
// ~/.config/gexftool/config.toml) unless a path is given explicitly:
//
//	[log]
//	level = "debug"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[serve]
//	addr = ":8080"
//	read_timeout = "30s"
//
//	[render]
//	format = "svg"
//	weights = true
//
// Environment variables override the file: GEXFTOOL_CACHE (backend),
// GEXFTOOL_REDIS_URL, GEXFTOOL_MONGO_URI and GEXFTOOL_LOG_LEVEL.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gexftool/pkg/cache"
	"github.com/matzehuels/gexftool/pkg/errors"
	"github.com/matzehuels/gexftool/pkg/pipeline"
)

const appName = "gexftool"

// Defaults.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
)

// Config is the full configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
	Render RenderConfig `toml:"render"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// RenderConfig holds snapshot defaults.
type RenderConfig struct {
	Format  string `toml:"format"`
	Weights bool   `toml:"weights"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns the XDG cache directory (~/.cache/gexftool/).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration at path. An empty path means DefaultPath,
// where a missing file is not an error. Environment overrides and
// defaults are applied, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
			}
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		default:
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
		}
	}

	cfg.ApplyEnv()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GEXFTOOL_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GEXFTOOL_CACHE"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("GEXFTOOL_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("GEXFTOOL_MONGO_URI"); v != "" {
		c.Cache.MongoURI = v
	}
	if v := os.Getenv("GEXFTOOL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir, _ = DefaultCacheDir()
	}
	if c.Cache.Database == "" {
		c.Cache.Database = appName
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
	if c.Serve.MaxBodyBytes == 0 {
		c.Serve.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Serve.ReadTimeout.Duration == 0 {
		c.Serve.ReadTimeout.Duration = DefaultReadTimeout
	}
	if c.Serve.WriteTimeout.Duration == 0 {
		c.Serve.WriteTimeout.Duration = DefaultWriteTimeout
	}
	if c.Render.Format == "" {
		c.Render.Format = pipeline.DefaultFormat
	}
}

var backends = []string{cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q: must be one of %s",
			c.Cache.Backend, strings.Join(backends, ", "))
	}
	switch c.Cache.Backend {
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			break
		}
		if err := errors.ValidatePath(c.Cache.Dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.dir")
		}
	case cache.BackendRedis:
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss", "unix"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	case cache.BackendMongo:
		if err := errors.ValidateURL(c.Cache.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.mongo_uri")
		}
	}
	if c.Serve.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "serve.max_body_bytes must not be negative")
	}
	if !pipeline.ValidFormats[c.Render.Format] {
		return errors.New(errors.ErrCodeInvalidConfig, "render.format %q: must be dot, svg or png", c.Render.Format)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		MongoURI: c.Cache.MongoURI,
		Database: c.Cache.Database,
	}
}
