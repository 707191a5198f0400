package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/pipeline"
)

// infoCommand creates the info command for summarizing a document.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Summarize a GEXF document",
		Long:  `Read a GEXF document and print its time-zero graph size, its event counts by kind, and the number of time steps.`,
		Args:  cobra.ExactArgs(1),
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
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Stats)
			}
			printInfoStats(args[0], res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")

	return cmd
}

func printInfoStats(path string, res *pipeline.ReadResult) {
	st := res.Stats
	fmt.Fprintln(stdout, StyleTitle.Render(path))
	printKeyValue("Nodes", strconv.Itoa(st.Nodes))
	printKeyValue("Edges", strconv.Itoa(st.Edges))
	printKeyValue("Directed", strconv.FormatBool(st.Directed))
	printKeyValue("Weighted", strconv.FormatBool(st.Weighted))
	printKeyValue("Time steps", strconv.Itoa(st.Steps))
	printKeyValue("Events", strconv.Itoa(st.Events))

	if st.Events > 0 {
		printNewline()
		fmt.Fprintln(stdout, kindTable(st.Kinds))
	}
	printStats(st.Nodes, st.Edges, st.Events, res.CacheHit)
}

// kindTable renders event counts in kind order.
func kindTable(kinds map[string]int) string {
	var rows [][]string
	for _, k := range dynamic.Kinds {
		if n, ok := kinds[k.String()]; ok {
			rows = append(rows, []string{k.String(), strconv.Itoa(int(k)), strconv.Itoa(n)})
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Code", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
			}
			return kindStyle(rows[row][0])
		})
	return t.Render()
}

func kindStyle(kind string) lipgloss.Style {
	k, err := dynamic.ParseKind(kind)
	if err != nil {
		return StyleValue
	}
	switch k {
	case dynamic.NodeAddition, dynamic.EdgeAddition, dynamic.NodeRestoration:
		return styleAdd
	case dynamic.NodeRemoval, dynamic.EdgeRemoval:
		return styleRemove
	case dynamic.EdgeWeightUpdate:
		return styleUpdate
	default:
		return StyleDim
	}
}
