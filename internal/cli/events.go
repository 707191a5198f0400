package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gexftool/pkg/dynamic"
)

// eventsCommand creates the events command for listing the event stream.
func (c *CLI) eventsCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		step    int
	)

	cmd := &cobra.Command{
		Use:   "events [file]",
		Short: "List the event stream of a GEXF document",
		Long: `Read a GEXF document and list its event stream, grouped by time step.

With --json the stream is written in the JSON form accepted by the HTTP
write endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := runner.ReadSource(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}

			s := res.Events
			if step >= 0 {
				segs := s.Segments()
				if step >= len(segs) {
					return fmt.Errorf("step %d out of range [0, %d)", step, len(segs))
				}
				s = segs[step]
			}

			if asJSON {
				return dynamic.Write(s, stdout)
			}
			if len(s) == 0 {
				printInfo("No events")
				return nil
			}
			printEvents(s, max(step, 0))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print events as JSON")
	cmd.Flags().IntVarP(&step, "step", "s", -1, "only list the events of one time step")

	return cmd
}

// printEvents lists s one segment at a time, numbering segments from first.
func printEvents(s dynamic.Stream, first int) {
	for i, seg := range s.Segments() {
		fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("step %d", first+i))+" "+
			StyleDim.Render(fmt.Sprintf("(%d events)", len(seg))))
		for _, e := range seg {
			fmt.Fprintln(stdout, "  "+formatEvent(e))
		}
	}
}

func formatEvent(e dynamic.Event) string {
	name := kindStyle(e.Kind.String()).Render(e.Kind.String())
	rest := strings.TrimPrefix(e.String(), e.Kind.String())
	return name + StyleValue.Render(rest)
}
