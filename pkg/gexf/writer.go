package gexf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/gexftool/pkg/buildinfo"
	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/errors"
	"github.com/matzehuels/gexftool/pkg/graph"
)

const (
	namespace      = "http://www.gexf.net/1.2draft"
	schemaLocation = "http://www.gexf.net/1.2draft http://www.gexf.net/1.2draft/gexf.xsd"
	version        = "1.2"
)

// Write encodes g and s as a GEXF document.
//
// With an empty stream the document is static. Otherwise it is dynamic with
// timeformat="double", and times are ordinals: the number of TimeStep
// events seen before an event. Node ids 0..N-1 are written for the graph's
// id bound plus one per NodeAddition in s. Edges are the graph's edges
// followed by every pair first added by the stream. Weight updates are
// written as dynamic "weight" attribute values.
//
// Reading the output back yields the same graph, the same edge set and a
// stream with the same events per time step.
func Write(w io.Writer, g *graph.Graph, s dynamic.Stream) error {
	data, err := Marshal(g, s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write gexf")
	}
	return nil
}

// Marshal returns the GEXF encoding of g and s. See [Write].
func Marshal(g *graph.Graph, s dynamic.Stream) ([]byte, error) {
	doc, err := encode(g, s)
	if err != nil {
		return nil, err
	}
	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "encode gexf")
	}
	return buf.Bytes(), nil
}

// Export writes g and s to path. The document is written to a temporary
// file next to path and renamed into place, so path is either left
// untouched or fully replaced.
func Export(path string, g *graph.Graph, s dynamic.Stream) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := Marshal(g, s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "rename %s", path)
	}
	return nil
}

// interval is a spell in ordinal time.
type interval struct {
	start, end       int
	hasStart, hasEnd bool
	weight           float64
}

// history is the timeline of one node or edge. initial marks elements of
// the time-zero graph, the only ones that may be removed before an addition.
type history struct {
	spells  []interval
	updates []weightAt
	initial bool
}

type weightAt struct {
	at int
	w  float64
}

func (h *history) open(at int, w float64) error {
	n := len(h.spells)
	if (n == 0 && h.initial) || (n > 0 && !h.spells[n-1].hasEnd) {
		return errors.New(errors.ErrCodeState, "added at step %d while alive", at)
	}
	h.spells = append(h.spells, interval{start: at, hasStart: true, weight: w})
	return nil
}

func (h *history) close(at int) error {
	n := len(h.spells)
	switch {
	case n == 0 && !h.initial:
		return errors.New(errors.ErrCodeState, "removed at step %d before being added", at)
	case n == 0:
		h.spells = append(h.spells, interval{end: at, hasEnd: true})
	case h.spells[n-1].hasEnd:
		return errors.New(errors.ErrCodeState, "removed at step %d while not alive", at)
	default:
		h.spells[n-1].end, h.spells[n-1].hasEnd = at, true
	}
	return nil
}

// live reports whether the element exists after the events seen so far.
func (h *history) live() bool {
	if n := len(h.spells); n > 0 {
		return !h.spells[n-1].hasEnd
	}
	return h.initial
}

// timelines scans s once, keeping a running TimeStep count as the time.
type timelines struct {
	directed bool
	nodes    map[int]*history
	edges    map[pairKey]*history
	dropped  map[pairKey]bool // live by spells, gone with an endpoint
	born     []graph.Edge     // pairs first seen in an EdgeAddition, in order
}

func collect(g *graph.Graph, s dynamic.Stream, n int) (*timelines, error) {
	tl := &timelines{
		directed: g.IsDirected(),
		nodes:    make(map[int]*history),
		edges:    make(map[pairKey]*history),
		dropped:  make(map[pairKey]bool),
	}
	for _, u := range g.Nodes() {
		tl.nodes[u] = &history{initial: true}
	}
	for _, e := range g.Edges() {
		tl.edges[keyOf(e.U, e.V, tl.directed)] = &history{initial: true}
	}

	at := 0
	for i, e := range s {
		if !e.Kind.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "event %d: invalid kind %d", i, e.Kind)
		}
		if e.Kind.IsNode() || e.Kind.IsEdge() {
			if e.U < 0 || e.U >= n || (e.Kind.IsEdge() && (e.V < 0 || e.V >= n)) {
				return nil, errors.New(errors.ErrCodeReference, "event %d %s: node out of range [0, %d)", i, e, n)
			}
		}
		var err error
		switch e.Kind {
		case dynamic.NodeAddition, dynamic.NodeRestoration:
			err = tl.node(e.U).open(at, 0)
		case dynamic.NodeRemoval:
			if err = tl.node(e.U).close(at); err == nil {
				tl.dropIncident(e.U)
			}
		case dynamic.EdgeAddition:
			if tl.endpointGone(e) {
				err = errors.New(errors.ErrCodeState, "endpoint is not alive at step %d", at)
				break
			}
			k := keyOf(e.U, e.V, tl.directed)
			if _, seen := tl.edges[k]; !seen {
				tl.born = append(tl.born, graph.Edge{U: e.U, V: e.V, Weight: e.Weight})
			}
			h := tl.edge(k)
			if tl.dropped[k] {
				delete(tl.dropped, k)
				if err = h.close(at); err != nil {
					break
				}
			}
			err = h.open(at, e.Weight)
		case dynamic.EdgeRemoval:
			k := keyOf(e.U, e.V, tl.directed)
			h := tl.edge(k)
			switch {
			case tl.dropped[k] && tl.endpointGone(e):
				delete(tl.dropped, k)
				err = h.close(at)
			case tl.dropped[k]:
				err = errors.New(errors.ErrCodeState, "removed at step %d while not alive", at)
			case !h.live() && tl.endpointGone(e):
			default:
				err = h.close(at)
			}
		case dynamic.EdgeWeightUpdate:
			k := keyOf(e.U, e.V, tl.directed)
			h := tl.edge(k)
			switch {
			case h.live() && !tl.dropped[k]:
				h.updates = append(h.updates, weightAt{at: at, w: e.Weight})
			case !tl.endpointGone(e):
				err = errors.New(errors.ErrCodeState, "weight updated at step %d while not alive", at)
			}
		case dynamic.TimeStep:
			at++
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeState, err, "event %d %s", i, e)
		}
	}
	return tl, nil
}

// dropIncident marks the live edges touching u as gone with it. Their
// spells stay open until the stream removes or re-adds them.
func (tl *timelines) dropIncident(u int) {
	for k, h := range tl.edges {
		if (k.u == u || k.v == u) && h.live() {
			tl.dropped[k] = true
		}
	}
}

// endpointGone reports whether an edge event refers to an edge that went
// away with one of its endpoints, which makes the event a no-op.
func (tl *timelines) endpointGone(e dynamic.Event) bool {
	return !tl.node(e.U).live() || !tl.node(e.V).live()
}

func (tl *timelines) node(u int) *history {
	h, ok := tl.nodes[u]
	if !ok {
		h = &history{}
		tl.nodes[u] = h
	}
	return h
}

func (tl *timelines) edge(k pairKey) *history {
	h, ok := tl.edges[k]
	if !ok {
		h = &history{}
		tl.edges[k] = h
	}
	return h
}

func encode(g *graph.Graph, s dynamic.Stream) (*etree.Document, error) {
	dyn := len(s) > 0
	n := g.UpperNodeIDBound() + s.Count(dynamic.NodeAddition)

	var tl *timelines
	if dyn {
		var err error
		if tl, err = collect(g, s, n); err != nil {
			return nil, err
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("gexf")
	root.CreateAttr("xmlns", namespace)
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	root.CreateAttr("xsi:schemaLocation", schemaLocation)
	root.CreateAttr("version", version)
	root.CreateElement("meta").CreateElement("creator").SetText(buildinfo.Creator())

	ge := root.CreateElement("graph")
	if g.IsDirected() {
		ge.CreateAttr("defaultedgetype", "directed")
	} else {
		ge.CreateAttr("defaultedgetype", "undirected")
	}
	if dyn {
		ge.CreateAttr("mode", "dynamic")
		ge.CreateAttr("timeformat", "double")
		if s.Count(dynamic.EdgeWeightUpdate) > 0 {
			attrs := ge.CreateElement("attributes")
			attrs.CreateAttr("class", "edge")
			attrs.CreateAttr("mode", "dynamic")
			a := attrs.CreateElement("attribute")
			a.CreateAttr("id", "weight")
			a.CreateAttr("title", "Weight")
			a.CreateAttr("type", "float")
		}
	} else {
		ge.CreateAttr("mode", "static")
	}

	nodes := ge.CreateElement("nodes")
	for u := range n {
		el := nodes.CreateElement("node")
		el.CreateAttr("id", strconv.Itoa(u))
		if tl != nil {
			if h, ok := tl.nodes[u]; ok {
				writeSpells(el, h, false, 0)
			}
		}
	}

	edges := ge.CreateElement("edges")
	list := g.Edges()
	if tl != nil {
		list = append(list, tl.born...)
	}
	for i, e := range list {
		el := edges.CreateElement("edge")
		el.CreateAttr("id", strconv.Itoa(i))
		el.CreateAttr("source", strconv.Itoa(e.U))
		el.CreateAttr("target", strconv.Itoa(e.V))
		if g.IsWeighted() {
			el.CreateAttr("weight", formatFloat(e.Weight))
		}
		if tl == nil {
			continue
		}
		h, ok := tl.edges[keyOf(e.U, e.V, tl.directed)]
		if !ok {
			continue
		}
		if len(h.updates) > 0 {
			avs := el.CreateElement("attvalues")
			for _, up := range h.updates {
				av := avs.CreateElement("attvalue")
				av.CreateAttr("for", "weight")
				av.CreateAttr("value", formatFloat(up.w))
				av.CreateAttr("start", strconv.Itoa(up.at))
			}
		}
		writeSpells(el, h, g.IsWeighted(), e.Weight)
	}
	return doc, nil
}

// writeSpells adds a <spells> block for h. Spell weights are written only
// when they differ from the element's own weight.
func writeSpells(el *etree.Element, h *history, weighted bool, base float64) {
	if len(h.spells) == 0 {
		return
	}
	block := el.CreateElement("spells")
	for _, sp := range h.spells {
		s := block.CreateElement("spell")
		if sp.hasStart {
			s.CreateAttr("start", strconv.Itoa(sp.start))
		}
		if sp.hasEnd {
			s.CreateAttr("end", strconv.Itoa(sp.end))
		}
		if weighted && sp.hasStart && sp.weight != base {
			s.CreateAttr("weight", formatFloat(sp.weight))
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
