package gexf

import (
	"bytes"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/graph"
)

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"static.gexf", "dynamic.gexf", "dynamic_weights.gexf"} {
		t.Run(name, func(t *testing.T) {
			g, s, err := Import(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("Import: %v", err)
			}

			path := filepath.Join(t.TempDir(), name)
			if err := Export(path, g, s); err != nil {
				t.Fatalf("Export: %v", err)
			}
			g2, s2, err := Import(path)
			if err != nil {
				t.Fatalf("re-Import: %v", err)
			}

			if g2.IsDirected() != g.IsDirected() {
				t.Errorf("IsDirected() = %v, want %v", g2.IsDirected(), g.IsDirected())
			}
			if g2.IsWeighted() != g.IsWeighted() {
				t.Errorf("IsWeighted() = %v, want %v", g2.IsWeighted(), g.IsWeighted())
			}
			if g2.NumberOfNodes() != g.NumberOfNodes() {
				t.Errorf("NumberOfNodes() = %d, want %d", g2.NumberOfNodes(), g.NumberOfNodes())
			}
			if !sameEdges(g, g2) {
				t.Errorf("Edges() = %v, want %v", g2.Edges(), g.Edges())
			}
			if len(s2) != len(s) {
				t.Errorf("len(stream) = %d, want %d", len(s2), len(s))
			}
			if !dynamic.SameShape(s, s2) {
				t.Errorf("Shape() = %v, want %v", s2.Shape(), s.Shape())
			}
		})
	}
}

func TestRoundTripPreservesStream(t *testing.T) {
	g, s, err := Import(filepath.Join("testdata", "dynamic.gexf"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, g, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, s2, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !slices.Equal(s, s2) {
		t.Errorf("stream =\n%v\nwant\n%v", s2, s)
	}
}

func TestRoundTripReplay(t *testing.T) {
	g, s, err := Import(filepath.Join("testdata", "dynamic.gexf"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	final, err := dynamic.Replay(g, s, -1)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	// a, c and d remain; b left at t=3. Edges a-c and d-a.
	if got := final.NumberOfNodes(); got != 3 {
		t.Errorf("NumberOfNodes() = %d, want 3", got)
	}
	if !final.HasEdge(0, 2) || !final.HasEdge(0, 3) || final.NumberOfEdges() != 2 {
		t.Errorf("Edges() = %v, want a-c and d-a", final.Edges())
	}
}

func sameEdges(a, b *graph.Graph) bool {
	if a.NumberOfEdges() != b.NumberOfEdges() {
		return false
	}
	for _, e := range a.Edges() {
		if !b.HasEdge(e.U, e.V) || b.Weight(e.U, e.V) != e.Weight {
			return false
		}
	}
	return true
}
