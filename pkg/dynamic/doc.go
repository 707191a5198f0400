// Package dynamic models structural change of a graph over time.
//
// # Events
//
// An [Event] is one of seven closed [Kind]s: node addition, removal and
// restoration, edge addition and removal, edge weight update, and the
// synthetic [TimeStep] marker. Events carry (U, V, Weight) whose meaning
// depends on the kind:
//
//	NodeAddition, NodeRemoval, NodeRestoration   U = node
//	EdgeAddition, EdgeWeightUpdate               U, V = endpoints, Weight
//	EdgeRemoval                                  U, V = endpoints
//	TimeStep                                     no fields
//
// # Streams
//
// A [Stream] is an ordered slice of events. Events between two TimeStep
// markers happened at the same instant; a TimeStep separates two distinct
// instants. [Stream.Segments] splits a stream at its markers.
//
// # Replay
//
// [Apply] mutates a graph by a sequence of events. [Replay] clones a graph
// and applies a stream up to a number of time steps, which is how snapshots
// of a dynamic graph are materialized.
package dynamic
