package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// timelineCommand creates the timeline command for stepping through a
// document interactively.
func (c *CLI) timelineCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "timeline [file]",
		Short: "Step through a document's time steps interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := runner.ReadSource(ctx, args[0], false)
			if err != nil {
				return err
			}

			m := NewTimelineModel(res.Graph, res.Events)
			p := tea.NewProgram(m, tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
