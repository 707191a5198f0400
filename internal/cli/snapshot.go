package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gexftool/pkg/pipeline"
)

// snapshotCommand creates the snapshot command for rendering one time step.
func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		opts    pipeline.SnapshotOptions
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [file]",
		Short: "Render the graph at a time step",
		Long: `Replay a GEXF document's event stream up to a time step and render the
resulting graph as DOT, SVG or PNG. Nodes touched during that step are
highlighted. Without --step the final state is rendered.

Use --output - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := args[0]
			if !cmd.Flags().Changed("format") {
				opts.Format = c.config().Render.Format
			}
			if !cmd.Flags().Changed("weights") {
				opts.Weights = c.config().Render.Weights
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			opts.Refresh = noCache

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := runner.ReadSource(ctx, input, false)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Format))
			spinner.Start()
			out, err := runner.Snapshot(ctx, res.Document, opts)
			if err != nil {
				spinner.StopWithError("Rendering failed")
				return err
			}
			spinner.Stop()

			if output == "-" {
				_, err := stdout.Write(out)
				return err
			}
			if output == "" {
				suffix := ".final." + opts.Format
				if opts.Step >= 0 {
					suffix = fmt.Sprintf(".step%d.%s", opts.Step, opts.Format)
				}
				output = outputPath(input, suffix)
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}

			printSuccess("Snapshot rendered")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Step, "step", "s", -1, "time steps to replay (default: all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", pipeline.DefaultFormat, "output format: dot, svg, png")
	cmd.Flags().BoolVarP(&opts.Weights, "weights", "w", false, "label edges with their weights")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.step<N>.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
