// Package cli implements the gexftool command-line interface.
package cli

import (
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gexftool/internal/config"
	"github.com/matzehuels/gexftool/pkg/buildinfo"
	"github.com/matzehuels/gexftool/pkg/cache"
	"github.com/matzehuels/gexftool/pkg/httputil"
	"github.com/matzehuels/gexftool/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gexftool"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gexftool reads, writes and replays dynamic GEXF graphs",
		Long:         `gexftool converts GEXF documents into a time-zero graph plus an event stream and back, and replays the stream to inspect or render any time step.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.SetLogLevel(cfg.LogLevel())
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gexftool/config.toml)")

	// Register all subcommands
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.eventsCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.timelineCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, falling back to defaults when
// a command runs without the root pre-run.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg := &config.Config{}
		cfg.SetDefaults()
		c.cfg = cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache backend. An unreachable remote
// backend is reported and replaced by no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.config().CacheOptions()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		if opts.Backend == cache.BackendFile {
			return nil, err
		}
		c.Logger.Warn("cache unavailable, continuing without", "backend", opts.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory from the configuration.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return dir, nil
	}
	return config.DefaultCacheDir()
}

// outputPath derives an output file next to input: "net.gexf" with suffix
// ".step2.svg" becomes "net.step2.svg". URL inputs write to the working
// directory, named after their last path element.
func outputPath(input, suffix string) string {
	if httputil.IsURL(input) {
		name := "document"
		if u, err := url.Parse(input); err == nil {
			if base := path.Base(u.Path); base != "/" && base != "." {
				name = base
			}
		}
		input = name
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
