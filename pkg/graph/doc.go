// Package graph provides a graph with a dense integer node-id space.
//
// # Overview
//
// Nodes are identified by integers drawn contiguously from 0. [Graph.AddNode]
// always returns the next unused id, and ids are never reissued: a removed
// node keeps its id and can come back with [Graph.RestoreNode]. This is the
// property the GEXF reader relies on when it replays node removal and
// restoration events.
//
// Edges are (u, v, weight) triples kept in insertion order. Unweighted graphs
// report weight 1.0 for every edge. Undirected graphs treat (u, v) and (v, u)
// as the same edge.
//
// # Basic Usage
//
//	g := graph.New(0, true, false)
//	a := g.AddNode()
//	b := g.AddNode()
//	if err := g.AddEdge(a, b, 2.5); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(g.NumberOfNodes(), g.NumberOfEdges(), g.Weight(b, a))
//	// 2 1 2.5
//
// # Serialization
//
// [Marshal], [Write] and [Read] encode a graph as JSON for caching and for
// the HTTP service. Removed nodes are encoded so that the id space survives
// the round trip.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Concurrent readers are fine as
// long as nobody writes.
package graph
