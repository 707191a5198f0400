package dynamic

import (
	"encoding/json"
	"fmt"
)

// Kind is the type of a graph event.
//
// The numeric values follow the conventional dynamic-graph numbering and are
// part of the JSON wire format as the "type" field.
type Kind int

const (
	NodeAddition     Kind = 0
	NodeRemoval      Kind = 1
	EdgeAddition     Kind = 2
	EdgeRemoval      Kind = 3
	EdgeWeightUpdate Kind = 4
	TimeStep         Kind = 5
	NodeRestoration  Kind = 6
)

// Kinds lists every event kind in numeric order.
var Kinds = []Kind{
	NodeAddition,
	NodeRemoval,
	EdgeAddition,
	EdgeRemoval,
	EdgeWeightUpdate,
	TimeStep,
	NodeRestoration,
}

var kindNames = map[Kind]string{
	NodeAddition:     "node_addition",
	NodeRemoval:      "node_removal",
	EdgeAddition:     "edge_addition",
	EdgeRemoval:      "edge_removal",
	EdgeWeightUpdate: "edge_weight_update",
	TimeStep:         "time_step",
	NodeRestoration:  "node_restoration",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the seven known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsNode reports whether k affects a single node.
func (k Kind) IsNode() bool {
	switch k {
	case NodeAddition, NodeRemoval, NodeRestoration:
		return true
	case EdgeAddition, EdgeRemoval, EdgeWeightUpdate, TimeStep:
		return false
	default:
		return false
	}
}

// IsEdge reports whether k affects an edge.
func (k Kind) IsEdge() bool {
	switch k {
	case EdgeAddition, EdgeRemoval, EdgeWeightUpdate:
		return true
	case NodeAddition, NodeRemoval, NodeRestoration, TimeStep:
		return false
	default:
		return false
	}
}

// ParseKind returns the kind with the given snake_case name.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindsByName[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText encodes a kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Event is a single structural change.
type Event struct {
	Kind   Kind
	U      int
	V      int
	Weight float64
}

// NewEvent builds an event of kind k.
func NewEvent(k Kind, u, v int, w float64) Event {
	return Event{Kind: k, U: u, V: v, Weight: w}
}

// AddNode returns a NodeAddition event for u.
func AddNode(u int) Event { return Event{Kind: NodeAddition, U: u} }

// RemoveNode returns a NodeRemoval event for u.
func RemoveNode(u int) Event { return Event{Kind: NodeRemoval, U: u} }

// RestoreNode returns a NodeRestoration event for u.
func RestoreNode(u int) Event { return Event{Kind: NodeRestoration, U: u} }

// AddEdge returns an EdgeAddition event.
func AddEdge(u, v int, w float64) Event { return Event{Kind: EdgeAddition, U: u, V: v, Weight: w} }

// RemoveEdge returns an EdgeRemoval event.
func RemoveEdge(u, v int) Event { return Event{Kind: EdgeRemoval, U: u, V: v} }

// UpdateWeight returns an EdgeWeightUpdate event.
func UpdateWeight(u, v int, w float64) Event {
	return Event{Kind: EdgeWeightUpdate, U: u, V: v, Weight: w}
}

// Step returns a TimeStep marker.
func Step() Event { return Event{Kind: TimeStep} }

// String formats the event with only the fields its kind uses.
func (e Event) String() string {
	switch e.Kind {
	case NodeAddition, NodeRemoval, NodeRestoration:
		return fmt.Sprintf("%s(%d)", e.Kind, e.U)
	case EdgeAddition, EdgeWeightUpdate:
		return fmt.Sprintf("%s(%d, %d, %g)", e.Kind, e.U, e.V, e.Weight)
	case EdgeRemoval:
		return fmt.Sprintf("%s(%d, %d)", e.Kind, e.U, e.V)
	case TimeStep:
		return e.Kind.String()
	default:
		return fmt.Sprintf("%s(%d, %d, %g)", e.Kind, e.U, e.V, e.Weight)
	}
}

type eventJSON struct {
	Type   int      `json:"type"`
	Kind   Kind     `json:"kind"`
	U      *int     `json:"u,omitempty"`
	V      *int     `json:"v,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

// MarshalJSON encodes only the fields the event's kind uses.
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{Type: int(e.Kind), Kind: e.Kind}
	u, v, w := e.U, e.V, e.Weight
	switch e.Kind {
	case NodeAddition, NodeRemoval, NodeRestoration:
		out.U = &u
	case EdgeAddition, EdgeWeightUpdate:
		out.U, out.V, out.Weight = &u, &v, &w
	case EdgeRemoval:
		out.U, out.V = &u, &v
	case TimeStep:
	default:
		return nil, fmt.Errorf("unknown event kind %d", int(e.Kind))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an event written by MarshalJSON. The "kind" name
// takes precedence over the numeric "type".
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type   *int    `json:"type"`
		Kind   string  `json:"kind"`
		U      int     `json:"u"`
		V      int     `json:"v"`
		Weight float64 `json:"weight"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var k Kind
	switch {
	case raw.Kind != "":
		parsed, err := ParseKind(raw.Kind)
		if err != nil {
			return err
		}
		k = parsed
	case raw.Type != nil:
		k = Kind(*raw.Type)
		if !k.Valid() {
			return fmt.Errorf("unknown event type %d", *raw.Type)
		}
	default:
		return fmt.Errorf("event without kind")
	}
	*e = Event{Kind: k, U: raw.U, V: raw.V, Weight: raw.Weight}
	return nil
}
