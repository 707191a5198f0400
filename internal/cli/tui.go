package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/graph"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TimelineModel - Interactive step-through of an event stream
// =============================================================================

// stepState is the graph size after a segment has been applied.
type stepState struct {
	nodes int
	edges int
}

// TimelineModel is the bubbletea model for stepping through a stream.
// Step i shows the events of segment i and the graph after applying it.
type TimelineModel struct {
	Segments []dynamic.Stream
	Step     int
	Height   int
	Offset   int

	initial stepState
	states  []stepState
	err     error
}

// NewTimelineModel replays s on g once, recording the graph size after each
// segment. A stream that fails to apply is shown up to the failing step.
func NewTimelineModel(g *graph.Graph, s dynamic.Stream) TimelineModel {
	m := TimelineModel{
		Segments: s.Segments(),
		Height:   15,
		initial:  stepState{nodes: g.NumberOfNodes(), edges: g.NumberOfEdges()},
	}
	work := g.Clone()
	for i, seg := range m.Segments {
		if err := dynamic.Apply(work, seg); err != nil {
			m.err = fmt.Errorf("step %d: %w", i, err)
			m.Segments = m.Segments[:i]
			break
		}
		m.states = append(m.states, stepState{nodes: work.NumberOfNodes(), edges: work.NumberOfEdges()})
	}
	return m
}

func (m TimelineModel) Init() tea.Cmd {
	return nil
}

func (m TimelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "p":
			if m.Step > 0 {
				m.Step--
				m.Offset = 0
			}
		case "right", "l", "n", " ":
			if m.Step < len(m.Segments)-1 {
				m.Step++
				m.Offset = 0
			}
		case "home", "g":
			m.Step, m.Offset = 0, 0
		case "end", "G":
			m.Step, m.Offset = max(len(m.Segments)-1, 0), 0
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset+m.Height < m.segmentLen() {
				m.Offset++
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TimelineModel) segmentLen() int {
	if m.Step >= len(m.Segments) {
		return 0
	}
	return len(m.Segments[m.Step])
}

func (m TimelineModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("←/→ step  ↑/↓ scroll  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Segments) == 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  static graph: %d nodes, %d edges", m.initial.nodes, m.initial.edges)))
		b.WriteString("\n")
		m.writeError(&b)
		return b.String()
	}

	b.WriteString(m.ruler())
	b.WriteString("\n")

	before := m.initial
	if m.Step > 0 {
		before = m.states[m.Step-1]
	}
	after := m.states[m.Step]
	fmt.Fprintf(&b, "  %s  nodes %s  edges %s\n\n",
		listSelectedStyle.Render(fmt.Sprintf("step %d/%d", m.Step, len(m.Segments)-1)),
		delta(before.nodes, after.nodes),
		delta(before.edges, after.edges))

	seg := m.Segments[m.Step]
	if len(seg) == 0 {
		b.WriteString(listDimStyle.Render("  no events"))
		b.WriteString("\n")
	}
	end := min(m.Offset+m.Height, len(seg))
	for _, e := range seg[m.Offset:end] {
		b.WriteString("  ")
		b.WriteString(formatEvent(e))
		b.WriteString("\n")
	}
	if len(seg) > m.Height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]", m.Offset+1, end, len(seg))))
		b.WriteString("\n")
	}
	m.writeError(&b)
	return b.String()
}

func (m TimelineModel) writeError(b *strings.Builder) {
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("  replay stopped: " + m.err.Error()))
		b.WriteString("\n")
	}
}

// ruler draws one cell per step with the current step highlighted.
func (m TimelineModel) ruler() string {
	const width = 60
	first := 0
	if len(m.Segments) > width {
		first = min(max(m.Step-width/2, 0), len(m.Segments)-width)
	}
	var b strings.Builder
	b.WriteString("  ")
	for i := first; i < min(first+width, len(m.Segments)); i++ {
		if i == m.Step {
			b.WriteString(listSelectedStyle.Render("●"))
		} else {
			b.WriteString(listDimStyle.Render("·"))
		}
	}
	return b.String()
}

// delta formats a count and its change, e.g. "5 (+2)".
func delta(before, after int) string {
	s := StyleNumber.Render(fmt.Sprint(after))
	switch d := after - before; {
	case d > 0:
		s += " " + styleAdd.Render(fmt.Sprintf("(+%d)", d))
	case d < 0:
		s += " " + styleRemove.Render(fmt.Sprintf("(%d)", d))
	}
	return s
}
