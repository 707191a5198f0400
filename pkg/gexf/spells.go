package gexf

import (
	"math"
	"strconv"

	"github.com/beevik/etree"

	"github.com/matzehuels/gexftool/pkg/errors"
)

// spell is one existence interval of a node or edge. Either bound may be
// missing; weight is only meaningful for edges.
type spell struct {
	start, end       float64
	hasStart, hasEnd bool
	weight           float64
	hasWeight        bool
}

// transition is a lifecycle change derived from a spell.
type transition int

const (
	appear  transition = iota // first appearance
	reenter                   // appearance after a removal
	vanish                    // removal
)

// change is one transition at a time, carrying the spell's weight if any.
type change struct {
	what      transition
	at        float64
	weight    float64
	hasWeight bool
}

// readSpells collects the spells of el. A <spells> block wins over inline
// start/end attributes; without either the element has no spells.
func readSpells(el *etree.Element, tf timeFormat) ([]spell, error) {
	if block := el.SelectElement("spells"); block != nil {
		var spells []spell
		for _, s := range block.SelectElements("spell") {
			sp, err := readBounds(s, tf)
			if err != nil {
				return nil, err
			}
			if !sp.hasStart && !sp.hasEnd {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "spell without start or end")
			}
			spells = append(spells, sp)
		}
		return spells, nil
	}

	sp, err := readBounds(el, tf)
	if err != nil {
		return nil, err
	}
	if !sp.hasStart && !sp.hasEnd {
		return nil, nil
	}
	// An inline weight belongs to the element, not to the spell.
	sp.weight, sp.hasWeight = 0, false
	return []spell{sp}, nil
}

// readBounds reads start/end (or their open-interval variants) and weight
// from el.
func readBounds(el *etree.Element, tf timeFormat) (spell, error) {
	var sp spell
	var err error
	if v, ok := firstAttr(el, "start", "startopen"); ok {
		if sp.start, err = tf.parse(v); err != nil {
			return sp, err
		}
		sp.hasStart = true
	}
	if v, ok := firstAttr(el, "end", "endopen"); ok {
		if sp.end, err = tf.parse(v); err != nil {
			return sp, err
		}
		sp.hasEnd = true
	}
	if v, ok := firstAttr(el, "weight"); ok {
		if sp.weight, err = parseWeight(v); err != nil {
			return sp, err
		}
		sp.hasWeight = true
	}
	return sp, nil
}

// lifecycle applies the existence rules to an element's spells, in document
// order. It reports whether the element is part of the time-zero graph and
// the transitions it goes through.
//
//   - a spell with start emits appear, or reenter once the element was removed
//   - a spell with end emits vanish and marks the element removed
//   - an element without spells, or whose first spell has no start, is part
//     of the time-zero graph
func lifecycle(spells []spell) (initial bool, changes []change, err error) {
	if len(spells) == 0 {
		return true, nil, nil
	}
	deleted := false
	for i, sp := range spells {
		if sp.hasStart {
			c := change{what: appear, at: sp.start, weight: sp.weight, hasWeight: sp.hasWeight}
			if deleted {
				c.what = reenter
			}
			changes = append(changes, c)
		} else {
			if i > 0 {
				return false, nil, errors.New(errors.ErrCodeInvalidFormat,
					"spell %d has no start; only the first spell may omit it", i+1)
			}
			initial = true
		}
		if sp.hasEnd {
			changes = append(changes, change{what: vanish, at: sp.end})
			deleted = true
		}
	}
	return initial, changes, nil
}

func firstAttr(el *etree.Element, keys ...string) (string, bool) {
	for _, k := range keys {
		if a := el.SelectAttr(k); a != nil {
			return a.Value, true
		}
	}
	return "", false
}

func parseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "invalid weight %q", s)
	}
	return w, nil
}
