package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gexftool/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read, write and snapshot API over HTTP",
		Long: `Start an HTTP server exposing:

  GET  /healthz
  POST /v1/read       GEXF in, JSON graph and events out
  POST /v1/write      JSON graph and events in, GEXF out
  POST /v1/snapshot   GEXF in, rendered time step out (?step=N&format=svg)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}

			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			defer cc.Close()

			srv := server.New(cc, c.Logger, server.Options{
				MaxBodyBytes: cfg.Serve.MaxBodyBytes,
				ReadTimeout:  cfg.Serve.ReadTimeout.Duration,
				WriteTimeout: cfg.Serve.WriteTimeout.Duration,
				Format:       cfg.Render.Format,
			})
			err = srv.ListenAndServe(ctx, addr)
			if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
