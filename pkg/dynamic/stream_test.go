package dynamic

import (
	"bytes"
	"slices"
	"testing"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name  string
		s     Stream
		shape []int
		steps int
	}{
		{"empty", nil, []int{}, 0},
		{"no markers", Stream{AddNode(0), AddNode(1)}, []int{2}, 0},
		{"two instants", Stream{AddNode(0), Step(), RemoveNode(0)}, []int{1, 1}, 1},
		{"three instants", Stream{AddNode(0), AddNode(1), Step(), AddEdge(0, 1, 1), Step(), RemoveNode(1)}, []int{2, 1, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Shape(); !slices.Equal(got, tt.shape) {
				t.Errorf("Shape() = %v, want %v", got, tt.shape)
			}
			if got := tt.s.Steps(); got != tt.steps {
				t.Errorf("Steps() = %d, want %d", got, tt.steps)
			}
		})
	}
}

func TestSameShape(t *testing.T) {
	a := Stream{AddNode(0), AddNode(1), Step(), RemoveNode(0)}
	b := Stream{AddNode(1), AddNode(0), Step(), RemoveNode(1)}
	c := Stream{AddNode(0), Step(), AddNode(1), RemoveNode(0)}

	if !SameShape(a, b) {
		t.Error("reordered events inside a segment should keep the shape")
	}
	if SameShape(a, c) {
		t.Error("moving an event across a marker should change the shape")
	}
}

func TestCountAndValidate(t *testing.T) {
	s := Stream{AddNode(0), AddNode(1), Step(), AddEdge(0, 1, 1)}
	if got := s.Count(NodeAddition); got != 2 {
		t.Errorf("Count(NodeAddition) = %d, want 2", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	s = append(s, Event{Kind: Kind(12)})
	if err := s.Validate(); err == nil {
		t.Error("Validate should reject unknown kinds")
	}
}

func TestStreamJSONRoundTrip(t *testing.T) {
	s := Stream{AddNode(3), Step(), AddEdge(0, 3, 2.5), UpdateWeight(0, 3, 4), Step(), RemoveEdge(0, 3), RestoreNode(1)}

	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !slices.Equal(got, s) {
		t.Errorf("Read = %v, want %v", got, s)
	}

	empty, err := Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil): %v", err)
	}
	if string(bytes.TrimSpace(empty)) != "[]" {
		t.Errorf("Marshal(nil) = %s, want []", empty)
	}
}
