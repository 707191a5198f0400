// Package pkg provides the libraries behind gexftool.
//
// # Overview
//
// gexftool maps GEXF documents, static or dynamic, to a time-zero graph plus
// an ordered stream of change events, and back. The pkg directory is
// organized as:
//
//  1. [graph] - Dense-id graph with removable nodes and its JSON form
//  2. [dynamic] - Event kinds, streams and replay
//  3. [gexf] - GEXF reader and writer
//  4. [pipeline] - Orchestration (read → replay → render) with caching
//  5. [cache] - File, Redis and MongoDB cache backends
//  6. [render/nodelink] - DOT, SVG and PNG snapshots via Graphviz
//  7. [httputil] - Remote document fetching with retry
//  8. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
//	GEXF file or URL
//	       ↓
//	gexf.Read → (graph.Graph, dynamic.Stream)
//	       ↓
//	dynamic.Replay → graph at step N
//	       ↓
//	nodelink.ToDOT → DOT / SVG / PNG
//
// gexf.Write inverts gexf.Read: the stream is folded back into per-element
// spells, one time unit per TimeStep.
package pkg
