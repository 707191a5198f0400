package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Wire Format
// =============================================================================

// Document is the JSON form of a Graph.
//
// Nodes is the id upper bound; Removed lists the ids in 0..Nodes-1 that are
// currently removed, so the id space survives a round trip.
type Document struct {
	Directed bool       `json:"directed"`
	Weighted bool       `json:"weighted"`
	Nodes    int        `json:"nodes"`
	Removed  []int      `json:"removed,omitempty"`
	Edges    []EdgeJSON `json:"edges"`
}

// EdgeJSON is the JSON form of an Edge.
type EdgeJSON struct {
	Source int      `json:"source"`
	Target int      `json:"target"`
	Weight *float64 `json:"weight,omitempty"`
}

// ToDocument converts g into its wire form. Weights are only emitted for
// weighted graphs.
func ToDocument(g *Graph) Document {
	doc := Document{
		Directed: g.directed,
		Weighted: g.weighted,
		Nodes:    len(g.alive),
		Edges:    make([]EdgeJSON, len(g.edges)),
	}
	for u, ok := range g.alive {
		if !ok {
			doc.Removed = append(doc.Removed, u)
		}
	}
	for i, e := range g.edges {
		ej := EdgeJSON{Source: e.U, Target: e.V}
		if g.weighted {
			w := e.Weight
			ej.Weight = &w
		}
		doc.Edges[i] = ej
	}
	return doc
}

// FromDocument rebuilds a Graph from its wire form. Edges are added in
// document order, before removed nodes are marked removed, so a document
// produced by ToDocument decodes to an equal graph.
func FromDocument(doc Document) (*Graph, error) {
	if doc.Nodes < 0 {
		return nil, fmt.Errorf("negative node count %d", doc.Nodes)
	}
	g := New(doc.Nodes, doc.Weighted, doc.Directed)
	for _, e := range doc.Edges {
		w := DefaultWeight
		if e.Weight != nil {
			w = *e.Weight
		}
		if err := g.AddEdge(e.Source, e.Target, w); err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", e.Source, e.Target, err)
		}
	}
	for _, u := range doc.Removed {
		if u < 0 || u >= len(g.alive) {
			return nil, fmt.Errorf("removed node %d: %w", u, ErrNodeNotFound)
		}
		g.alive[u] = false
		g.count--
	}
	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a graph to JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a graph as JSON to an io.Writer.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a graph to a JSON file.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph from an io.Reader.
func Read(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// ReadFile reads a JSON file and returns the decoded graph.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
