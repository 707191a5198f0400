package graph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrNodeNotFound is returned when an operation names a node id that was
	// never allocated.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeRemoved is returned when an edge touches a removed node, or when
	// a removed node is removed again.
	ErrNodeRemoved = errors.New("node is removed")

	// ErrNodeAlive is returned by [Graph.RestoreNode] for a node that was
	// never removed.
	ErrNodeAlive = errors.New("node is not removed")

	// ErrEdgeNotFound is returned when an operation names an edge that does
	// not exist.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the edge already
	// exists. Parallel edges are not supported.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// DefaultWeight is the weight of edges in unweighted graphs.
const DefaultWeight = 1.0

// Edge is a (U, V, Weight) triple. For undirected graphs the orientation is
// the one the edge was added with.
type Edge struct {
	U      int
	V      int
	Weight float64
}

type edgeKey struct{ u, v int }

// Graph is a graph over dense integer node ids.
//
// The zero value is not usable - use [New].
type Graph struct {
	directed bool
	weighted bool

	alive []bool // indexed by node id; len is the id upper bound
	count int    // number of alive nodes

	edges []Edge
	index map[edgeKey]int // key -> position in edges
}

// New creates a graph with n nodes (ids 0..n-1).
func New(n int, weighted, directed bool) *Graph {
	g := &Graph{
		directed: directed,
		weighted: weighted,
		alive:    make([]bool, 0, n),
		index:    make(map[edgeKey]int),
	}
	for range n {
		g.AddNode()
	}
	return g
}

// IsDirected reports whether edges are ordered pairs.
func (g *Graph) IsDirected() bool { return g.directed }

// IsWeighted reports whether edge weights are meaningful.
func (g *Graph) IsWeighted() bool { return g.weighted }

// AddNode allocates the next node id and returns it.
func (g *Graph) AddNode() int {
	g.alive = append(g.alive, true)
	g.count++
	return len(g.alive) - 1
}

// HasNode reports whether u is allocated and not removed.
func (g *Graph) HasNode(u int) bool {
	return u >= 0 && u < len(g.alive) && g.alive[u]
}

// RemoveNode removes u together with all of its incident edges. The id stays
// allocated and can be brought back with RestoreNode.
func (g *Graph) RemoveNode(u int) error {
	if u < 0 || u >= len(g.alive) {
		return ErrNodeNotFound
	}
	if !g.alive[u] {
		return ErrNodeRemoved
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.U == u || e.V == u })
	g.reindex()
	g.alive[u] = false
	g.count--
	return nil
}

// RestoreNode brings back a removed node under its original id. Edges removed
// together with the node are not restored.
func (g *Graph) RestoreNode(u int) error {
	if u < 0 || u >= len(g.alive) {
		return ErrNodeNotFound
	}
	if g.alive[u] {
		return ErrNodeAlive
	}
	g.alive[u] = true
	g.count++
	return nil
}

// AddEdge adds the edge (u, v). On unweighted graphs the weight is ignored
// and DefaultWeight is stored.
func (g *Graph) AddEdge(u, v int, w float64) error {
	if err := g.checkEndpoints(u, v); err != nil {
		return err
	}
	k := g.key(u, v)
	if _, ok := g.index[k]; ok {
		return ErrDuplicateEdge
	}
	if !g.weighted {
		w = DefaultWeight
	}
	g.index[k] = len(g.edges)
	g.edges = append(g.edges, Edge{U: u, V: v, Weight: w})
	return nil
}

// RemoveEdge removes the edge (u, v).
func (g *Graph) RemoveEdge(u, v int) error {
	k := g.key(u, v)
	i, ok := g.index[k]
	if !ok {
		return ErrEdgeNotFound
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	g.reindex()
	return nil
}

// SetWeight changes the weight of the edge (u, v). It is a no-op on
// unweighted graphs apart from the existence check.
func (g *Graph) SetWeight(u, v int, w float64) error {
	i, ok := g.index[g.key(u, v)]
	if !ok {
		return ErrEdgeNotFound
	}
	if g.weighted {
		g.edges[i].Weight = w
	}
	return nil
}

// HasEdge reports whether the edge (u, v) exists.
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.index[g.key(u, v)]
	return ok
}

// Weight returns the weight of (u, v), or 0 if the edge does not exist.
func (g *Graph) Weight(u, v int) float64 {
	if i, ok := g.index[g.key(u, v)]; ok {
		return g.edges[i].Weight
	}
	return 0
}

// NumberOfNodes returns the number of alive nodes.
func (g *Graph) NumberOfNodes() int { return g.count }

// UpperNodeIDBound returns the number of node ids ever allocated, which is
// one more than the largest id.
func (g *Graph) UpperNodeIDBound() int { return len(g.alive) }

// NumberOfEdges returns the number of edges.
func (g *Graph) NumberOfEdges() int { return len(g.edges) }

// Nodes returns the alive node ids in ascending order.
func (g *Graph) Nodes() []int {
	nodes := make([]int, 0, g.count)
	for u, ok := range g.alive {
		if ok {
			nodes = append(nodes, u)
		}
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		directed: g.directed,
		weighted: g.weighted,
		alive:    slices.Clone(g.alive),
		count:    g.count,
		edges:    slices.Clone(g.edges),
		index:    maps.Clone(g.index),
	}
	return c
}

func (g *Graph) checkEndpoints(u, v int) error {
	for _, x := range [2]int{u, v} {
		if x < 0 || x >= len(g.alive) {
			return ErrNodeNotFound
		}
		if !g.alive[x] {
			return ErrNodeRemoved
		}
	}
	return nil
}

func (g *Graph) key(u, v int) edgeKey {
	if !g.directed && v < u {
		u, v = v, u
	}
	return edgeKey{u, v}
}

func (g *Graph) reindex() {
	clear(g.index)
	for i, e := range g.edges {
		g.index[g.key(e.U, e.V)] = i
	}
}
