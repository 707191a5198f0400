package dynamic

import (
	"fmt"

	"github.com/matzehuels/gexftool/pkg/graph"
)

// Apply mutates g by each event in order. A TimeStep has no structural
// effect. Removing or reweighting an edge that already disappeared with one
// of its endpoints is a no-op. The first event the graph rejects aborts the
// replay; the error names the event and wraps the graph's sentinel error.
func Apply(g *graph.Graph, events []Event) error {
	for i, e := range events {
		if err := apply(g, e); err != nil {
			return fmt.Errorf("event %d %s: %w", i, e, err)
		}
	}
	return nil
}

func apply(g *graph.Graph, e Event) error {
	switch e.Kind {
	case NodeAddition:
		if id := g.AddNode(); id != e.U {
			return fmt.Errorf("node id %d allocated, stream expects %d", id, e.U)
		}
		return nil
	case NodeRemoval:
		return g.RemoveNode(e.U)
	case NodeRestoration:
		return g.RestoreNode(e.U)
	case EdgeAddition:
		return g.AddEdge(e.U, e.V, e.Weight)
	case EdgeRemoval:
		if endpointGone(g, e) {
			return nil
		}
		return g.RemoveEdge(e.U, e.V)
	case EdgeWeightUpdate:
		if endpointGone(g, e) {
			return nil
		}
		return g.SetWeight(e.U, e.V, e.Weight)
	case TimeStep:
		return nil
	default:
		return fmt.Errorf("unknown event kind %d", int(e.Kind))
	}
}

// endpointGone reports whether the edge of e already went away together with
// a removed endpoint.
func endpointGone(g *graph.Graph, e Event) bool {
	return !g.HasEdge(e.U, e.V) && (!g.HasNode(e.U) || !g.HasNode(e.V))
}

// Replay returns a copy of g after applying s up to, but not including, its
// steps-th TimeStep marker. steps < 0 replays the whole stream. g itself is
// not modified.
func Replay(g *graph.Graph, s Stream, steps int) (*graph.Graph, error) {
	out := g.Clone()
	end := len(s)
	if steps >= 0 {
		seen := 0
		for i, e := range s {
			if e.Kind != TimeStep {
				continue
			}
			if seen == steps {
				end = i
				break
			}
			seen++
		}
	}
	if err := Apply(out, s[:end]); err != nil {
		return nil, err
	}
	return out, nil
}
