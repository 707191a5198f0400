package dynamic

import (
	"errors"
	"testing"

	"github.com/matzehuels/gexftool/pkg/graph"
)

func TestApply(t *testing.T) {
	g := graph.New(2, true, false)
	s := Stream{
		AddNode(2),
		AddEdge(0, 2, 1.5),
		Step(),
		UpdateWeight(2, 0, 3),
		RemoveNode(1),
		Step(),
		RemoveNode(2),
		RemoveEdge(0, 2),
		RestoreNode(1),
	}

	if err := Apply(g, s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if g.NumberOfNodes() != 2 || g.UpperNodeIDBound() != 3 {
		t.Errorf("nodes = %d/%d, want 2/3", g.NumberOfNodes(), g.UpperNodeIDBound())
	}
	if g.NumberOfEdges() != 0 {
		t.Errorf("NumberOfEdges() = %d, want 0", g.NumberOfEdges())
	}
}

func TestApplyRejectsInconsistentEvents(t *testing.T) {
	tests := []struct {
		name string
		s    Stream
		want error
	}{
		{"restore alive node", Stream{RestoreNode(0)}, graph.ErrNodeAlive},
		{"remove twice", Stream{RemoveNode(0), RemoveNode(0)}, graph.ErrNodeRemoved},
		{"edge to unknown node", Stream{AddEdge(0, 9, 1)}, graph.ErrNodeNotFound},
		{"remove missing edge", Stream{RemoveEdge(0, 1)}, graph.ErrEdgeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New(2, false, true)
			if err := Apply(g, tt.s); !errors.Is(err, tt.want) {
				t.Errorf("Apply error = %v, want %v", err, tt.want)
			}
		})
	}

	g := graph.New(2, false, true)
	if err := Apply(g, Stream{AddNode(5)}); err == nil {
		t.Error("Apply should reject a NodeAddition with a non-dense id")
	}
}

func TestReplay(t *testing.T) {
	g := graph.New(1, false, true)
	s := Stream{AddNode(1), Step(), AddEdge(0, 1, 1), Step(), RemoveNode(0)}

	tests := []struct {
		steps     int
		wantNodes int
		wantEdges int
	}{
		{0, 2, 0},
		{1, 2, 1},
		{2, 1, 0},
		{5, 1, 0},
		{-1, 1, 0},
	}

	for _, tt := range tests {
		got, err := Replay(g, s, tt.steps)
		if err != nil {
			t.Fatalf("Replay(%d): %v", tt.steps, err)
		}
		if got.NumberOfNodes() != tt.wantNodes || got.NumberOfEdges() != tt.wantEdges {
			t.Errorf("Replay(%d) = %d nodes %d edges, want %d %d",
				tt.steps, got.NumberOfNodes(), got.NumberOfEdges(), tt.wantNodes, tt.wantEdges)
		}
	}

	if g.NumberOfNodes() != 1 || g.NumberOfEdges() != 0 {
		t.Error("Replay must not modify its input")
	}
}
