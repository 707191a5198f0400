// Package gexf reads and writes GEXF documents as a time-zero graph plus a
// stream of graph events.
//
// A static document maps to a [graph.Graph] and an empty [dynamic.Stream].
// In a dynamic document each node and edge carries spells, existence
// intervals with optional start and end, and these become addition,
// removal and restoration events ordered by time. Events sharing a time
// form one segment; consecutive segments are separated by a TimeStep:
//
//	g, s, err := gexf.Import("network.gexf")
//	if err != nil {
//		return err
//	}
//	fmt.Println(g.NumberOfNodes(), s.Steps())
//
// Node ids are dense. Nodes present from the start are numbered in
// document order; nodes born later are numbered in order of birth. The
// writer turns a graph and stream back into a document whose times are
// step ordinals, so a read-write-read round trip preserves the graph, the
// edge set and the number of events per step.
//
// Removing a node removes its incident edges. An edge whose spells outlast
// a removed endpoint stays gone after the endpoint is restored, until a
// later spell adds it again. Weight values outside an edge's lifetime are
// ignored.
//
// Parallel edges are not supported: a second edge between the same pair
// (either direction in undirected graphs) is rejected as INVALID_FORMAT.
//
// Time values are interpreted according to the graph's timeformat
// attribute: numbers for double, float and integer, and Unix seconds for
// date and dateTime.
package gexf
