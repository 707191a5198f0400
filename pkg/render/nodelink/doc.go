// Package nodelink renders graph states as node-link diagrams.
//
// # Overview
//
// A graph, typically a snapshot produced by replaying an event stream up to
// some time step, is converted to Graphviz DOT and rendered in process.
// Directed graphs become digraphs; undirected graphs use plain edges.
// Removed nodes are left out.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Weights: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes listed in [Options.Highlight] are filled with an accent color,
// which the CLI and server use to mark nodes touched in the last step.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package nodelink
