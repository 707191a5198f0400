package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// convertCommand creates the convert command for normalizing a document.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Rewrite a GEXF document in canonical form",
		Long: `Read a GEXF document and write it back out. The result uses dense
integer node ids and step ordinals as spell times, and reads back to the
same graph and event stream.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := args[0]
			if output == "" {
				output = outputPath(input, ".canonical.gexf")
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", input))
			spinner.Start()

			res, err := runner.Convert(ctx, input, output)
			if err != nil {
				spinner.StopWithError("Conversion failed")
				return err
			}
			spinner.Stop()
			prog.done("converted", "input", input, "output", output)

			printSuccess("Conversion complete")
			printFile(output)
			printStats(res.Stats.Nodes, res.Stats.Edges, res.Stats.Events, res.CacheHit)
			printNewline()
			printNextStep("Inspect", appName+" timeline "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.canonical.gexf)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
