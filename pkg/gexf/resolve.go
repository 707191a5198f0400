package gexf

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/errors"
)

// rawEvent is an event still keyed by the document's element ids.
type rawEvent struct {
	kind dynamic.Kind
	at   float64
	seq  int
	u, v string
	w    float64
}

// timedEvent is a resolved event that still carries its time.
type timedEvent struct {
	dynamic.Event
	at    float64
	label string
}

// resolve sorts raw by time, keeping discovery order among equal times, and
// rewrites external ids to dense integers. Static nodes keep their ids; each
// node addition takes the next free id in chronological order.
func resolve(static map[string]int, raw []rawEvent) ([]timedEvent, error) {
	sorted := slices.Clone(raw)
	slices.SortFunc(sorted, func(a, b rawEvent) int {
		return cmp.Or(cmp.Compare(a.at, b.at), cmp.Compare(a.seq, b.seq))
	})

	ids := maps.Clone(static)
	if ids == nil {
		ids = make(map[string]int)
	}
	next := len(static)
	out := make([]timedEvent, len(sorted))

	for i, r := range sorted {
		if r.kind != dynamic.NodeAddition {
			continue
		}
		if _, ok := ids[r.u]; ok {
			return nil, errors.New(errors.ErrCodeState, "node %q added at %g but already exists", r.u, r.at)
		}
		ids[r.u] = next
		out[i] = timedEvent{Event: dynamic.AddNode(next), at: r.at, label: nodeLabel(r.u)}
		next++
	}

	for i, r := range sorted {
		if r.kind == dynamic.NodeAddition {
			continue
		}
		u, ok := ids[r.u]
		if !ok {
			return nil, errors.New(errors.ErrCodeReference, "%s at %g references unknown node %q", r.kind, r.at, r.u)
		}
		ev := timedEvent{at: r.at, label: nodeLabel(r.u)}
		if r.kind.IsEdge() {
			v, ok := ids[r.v]
			if !ok {
				return nil, errors.New(errors.ErrCodeReference, "%s at %g references unknown node %q", r.kind, r.at, r.v)
			}
			ev.Event = dynamic.NewEvent(r.kind, u, v, r.w)
			ev.label = edgeLabel(r.u, r.v)
		} else {
			ev.Event = dynamic.NewEvent(r.kind, u, 0, 0)
		}
		out[i] = ev
	}
	return out, nil
}

type lifeState uint8

const (
	unborn lifeState = iota
	alive
	removed
	dropped // gone together with an endpoint
)

type pairKey struct{ u, v int }

func keyOf(u, v int, directed bool) pairKey {
	if !directed && u > v {
		u, v = v, u
	}
	return pairKey{u, v}
}

// checkTransitions walks the time-ordered events and rejects any lifecycle
// change that is not allowed from the element's current state. Initial
// nodes and edges start out alive.
//
// A node removal takes its live incident edges with it. Such an edge may
// still be removed by its spells while an endpoint is gone, which replays as
// a no-op; once both endpoints are back, its removal is left out of the
// returned events. Weight updates outside an edge's lifetime are left out
// too, so the result replays cleanly with [dynamic.Apply].
func checkTransitions(events []timedEvent, initialNodes int, initialEdges []pairKey, directed bool) ([]timedEvent, error) {
	nodes := make(map[int]lifeState)
	for u := range initialNodes {
		nodes[u] = alive
	}
	edges := make(map[pairKey]lifeState, len(initialEdges))
	for _, k := range initialEdges {
		edges[k] = alive
	}

	out := make([]timedEvent, 0, len(events))
	for _, e := range events {
		switch e.Kind {
		case dynamic.NodeAddition:
			if nodes[e.U] != unborn {
				return nil, transitionError(e, "node already exists")
			}
			nodes[e.U] = alive
		case dynamic.NodeRestoration:
			if nodes[e.U] != removed {
				return nil, transitionError(e, "node is not removed")
			}
			nodes[e.U] = alive
		case dynamic.NodeRemoval:
			if nodes[e.U] != alive {
				return nil, transitionError(e, "node is not alive")
			}
			nodes[e.U] = removed
			for k, st := range edges {
				if st == alive && (k.u == e.U || k.v == e.U) {
					edges[k] = dropped
				}
			}
		case dynamic.EdgeAddition:
			k := keyOf(e.U, e.V, directed)
			if edges[k] == alive {
				return nil, transitionError(e, "edge already exists")
			}
			if nodes[e.U] != alive || nodes[e.V] != alive {
				return nil, transitionError(e, "endpoint is not alive")
			}
			edges[k] = alive
		case dynamic.EdgeRemoval:
			k := keyOf(e.U, e.V, directed)
			switch edges[k] {
			case alive:
			case dropped:
				edges[k] = removed
				if nodes[e.U] == alive && nodes[e.V] == alive {
					continue
				}
			default:
				return nil, transitionError(e, "edge is not alive")
			}
			edges[k] = removed
		case dynamic.EdgeWeightUpdate:
			if edges[keyOf(e.U, e.V, directed)] != alive {
				continue
			}
		case dynamic.TimeStep:
		}
		out = append(out, e)
	}
	return out, nil
}

func transitionError(e timedEvent, reason string) error {
	return errors.New(errors.ErrCodeState, "%s of %s at %g: %s", e.Kind, e.label, e.at, reason)
}

// withTimeSteps splices a TimeStep between adjacent events whose times
// differ and drops the times.
func withTimeSteps(events []timedEvent) dynamic.Stream {
	s := make(dynamic.Stream, 0, 2*len(events))
	for i, e := range events {
		if i > 0 && e.at != events[i-1].at {
			s = append(s, dynamic.Step())
		}
		s = append(s, e.Event)
	}
	return s
}

func nodeLabel(id string) string { return "node " + quote(id) }

func edgeLabel(u, v string) string { return "edge " + quote(u) + "-" + quote(v) }

func quote(s string) string { return `"` + s + `"` }
