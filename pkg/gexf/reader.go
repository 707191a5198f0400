package gexf

import (
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/errors"
	"github.com/matzehuels/gexftool/pkg/graph"
)

// Read decodes a GEXF document from r.
//
// It returns the time-zero graph and the event stream describing how the
// graph evolves. Static documents yield an empty stream. In a dynamic
// document, nodes that exist from the start (no spells, or a first spell
// without start) get ids 0..S-1 in document order; nodes born later get
// S, S+1, ... in order of their birth time.
//
// Errors are *errors.Error values coded INVALID_FORMAT, REFERENCE_ERROR or
// STATE_ERROR. No graph is returned on error. Read does not close r.
func Read(r io.Reader) (*graph.Graph, dynamic.Stream, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse xml")
	}
	return decode(doc)
}

// ReadBytes decodes a GEXF document held in memory.
func ReadBytes(data []byte) (*graph.Graph, dynamic.Stream, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse xml")
	}
	return decode(doc)
}

// Import reads the GEXF file at path. See [Read].
func Import(path string) (*graph.Graph, dynamic.Stream, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// stagedEdge is an edge of the time-zero graph, kept until the weighted
// flag of the whole document is known.
type stagedEdge struct {
	u, v int
	w    float64
	desc string
}

// decoder holds the state of a single Read call.
type decoder struct {
	tf       timeFormat
	directed bool
	dynamic  bool
	weighted bool

	ids    map[string]int     // time-zero nodes
	births map[string]float64 // first appearance of nodes born later
	edges  []stagedEdge
	raw    []rawEvent
	seq    int
}

func decode(doc *etree.Document) (*graph.Graph, dynamic.Stream, error) {
	root := doc.Root()
	if root == nil || root.Tag != "gexf" {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing <gexf> root element")
	}
	ge := root.SelectElement("graph")
	if ge == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing <graph> element")
	}

	d := &decoder{
		directed: strings.EqualFold(ge.SelectAttrValue("defaultedgetype", "undirected"), "directed"),
		dynamic:  strings.EqualFold(ge.SelectAttrValue("mode", "static"), "dynamic"),
		ids:      make(map[string]int),
		births:   make(map[string]float64),
	}
	var err error
	if d.tf, err = parseTimeFormat(ge.SelectAttrValue("timeformat", "")); err != nil {
		return nil, nil, err
	}

	for _, block := range ge.SelectElements("nodes") {
		for _, n := range block.SelectElements("node") {
			if err := d.node(n); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, block := range ge.SelectElements("edges") {
		for _, e := range block.SelectElements("edge") {
			if err := d.edge(e); err != nil {
				return nil, nil, err
			}
		}
	}
	return d.build()
}

func (d *decoder) node(el *etree.Element) error {
	id := el.SelectAttrValue("id", "")
	if id == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "node without id")
	}
	if _, ok := d.ids[id]; ok {
		return errors.New(errors.ErrCodeInvalidFormat, "duplicate node id %q", id)
	}
	if _, ok := d.births[id]; ok {
		return errors.New(errors.ErrCodeInvalidFormat, "duplicate node id %q", id)
	}

	if !d.dynamic {
		d.ids[id] = len(d.ids)
		return nil
	}

	spells, err := readSpells(el, d.tf)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", id)
	}
	initial, changes, err := lifecycle(spells)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", id)
	}
	if initial {
		d.ids[id] = len(d.ids)
	}
	for _, c := range changes {
		kind := dynamic.NodeRemoval
		switch c.what {
		case appear:
			kind = dynamic.NodeAddition
			if _, ok := d.births[id]; !ok {
				d.births[id] = c.at
			}
		case reenter:
			kind = dynamic.NodeRestoration
		}
		d.emit(rawEvent{kind: kind, at: c.at, u: id})
	}
	return nil
}

func (d *decoder) edge(el *etree.Element) error {
	src := el.SelectAttrValue("source", "")
	dst := el.SelectAttrValue("target", "")
	if src == "" || dst == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "edge %q without source or target", el.SelectAttrValue("id", ""))
	}
	desc := edgeLabel(src, dst)

	base := graph.DefaultWeight
	if v, ok := firstAttr(el, "weight"); ok {
		w, err := parseWeight(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", desc)
		}
		base = w
		d.weighted = true
	}
	updates, err := d.weightValues(el, &base)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", desc)
	}

	if !d.dynamic {
		u, uok := d.ids[src]
		v, vok := d.ids[dst]
		if !uok || !vok {
			return errors.New(errors.ErrCodeReference, "%s references an unknown node", desc)
		}
		d.edges = append(d.edges, stagedEdge{u: u, v: v, w: base, desc: desc})
		return nil
	}

	spells, err := readSpells(el, d.tf)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", desc)
	}
	initial, changes, err := lifecycle(spells)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", desc)
	}
	if initial {
		if err := d.initialEdge(src, dst, base, desc); err != nil {
			return err
		}
	}
	for _, c := range changes {
		ev := rawEvent{kind: dynamic.EdgeRemoval, at: c.at, u: src, v: dst}
		if c.what != vanish {
			ev.kind = dynamic.EdgeAddition
			ev.w = base
			if c.hasWeight {
				ev.w = c.weight
				d.weighted = true
			}
		}
		d.emit(ev)
	}
	for _, up := range updates {
		d.emit(rawEvent{kind: dynamic.EdgeWeightUpdate, at: up.at, u: src, v: dst, w: up.w})
	}
	return nil
}

// initialEdge stages a start-less edge. If an endpoint is born later the
// edge cannot exist at time zero and is added when its last endpoint
// appears instead.
func (d *decoder) initialEdge(src, dst string, w float64, desc string) error {
	u, uok := d.ids[src]
	v, vok := d.ids[dst]
	if uok && vok {
		d.edges = append(d.edges, stagedEdge{u: u, v: v, w: w, desc: desc})
		return nil
	}
	at, known := 0.0, true
	for _, id := range []string{src, dst} {
		if _, ok := d.ids[id]; ok {
			continue
		}
		b, ok := d.births[id]
		if !ok {
			known = false
			break
		}
		at = max(at, b)
	}
	if !known {
		return errors.New(errors.ErrCodeReference, "%s references an unknown node", desc)
	}
	d.emit(rawEvent{kind: dynamic.EdgeAddition, at: at, u: src, v: dst, w: w})
	return nil
}

type weightUpdate struct {
	at float64
	w  float64
}

// weightValues reads <attvalue for="weight"> entries. One without start
// replaces base; timed ones become weight updates in dynamic documents.
func (d *decoder) weightValues(el *etree.Element, base *float64) ([]weightUpdate, error) {
	block := el.SelectElement("attvalues")
	if block == nil {
		return nil, nil
	}
	var updates []weightUpdate
	for _, av := range block.SelectElements("attvalue") {
		key, _ := firstAttr(av, "for", "id")
		if key != "weight" {
			continue
		}
		w, err := parseWeight(av.SelectAttrValue("value", ""))
		if err != nil {
			return nil, err
		}
		d.weighted = true
		start, ok := firstAttr(av, "start", "startopen")
		if !ok || !d.dynamic {
			*base = w
			continue
		}
		at, err := d.tf.parse(start)
		if err != nil {
			return nil, err
		}
		updates = append(updates, weightUpdate{at: at, w: w})
	}
	return updates, nil
}

func (d *decoder) emit(ev rawEvent) {
	ev.seq = d.seq
	d.seq++
	d.raw = append(d.raw, ev)
}

func (d *decoder) build() (*graph.Graph, dynamic.Stream, error) {
	g := graph.New(len(d.ids), d.weighted, d.directed)
	keys := make([]pairKey, 0, len(d.edges))
	for _, e := range d.edges {
		if err := g.AddEdge(e.u, e.v, e.w); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", e.desc)
		}
		keys = append(keys, keyOf(e.u, e.v, d.directed))
	}
	if !d.dynamic || len(d.raw) == 0 {
		return g, dynamic.Stream{}, nil
	}

	events, err := resolve(d.ids, d.raw)
	if err != nil {
		return nil, nil, err
	}
	if events, err = checkTransitions(events, len(d.ids), keys, d.directed); err != nil {
		return nil, nil, err
	}
	return g, withTimeSteps(events), nil
}
