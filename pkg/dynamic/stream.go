package dynamic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Stream is a chronologically ordered sequence of events.
type Stream []Event

// Steps returns the number of TimeStep markers in s.
func (s Stream) Steps() int { return s.Count(TimeStep) }

// Count returns the number of events of kind k.
func (s Stream) Count(k Kind) int {
	n := 0
	for _, e := range s {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Segments splits s at its TimeStep markers. The markers themselves are not
// part of any segment, so a stream with n markers yields n+1 segments (some
// possibly empty). An empty stream yields no segments.
func (s Stream) Segments() []Stream {
	if len(s) == 0 {
		return nil
	}
	var segs []Stream
	start := 0
	for i, e := range s {
		if e.Kind == TimeStep {
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}
	return append(segs, s[start:])
}

// Shape returns the number of non-marker events in each segment. Two streams
// with the same shape agree on their relative temporal order, which is what a
// GEXF write/read round trip preserves.
func (s Stream) Shape() []int {
	segs := s.Segments()
	shape := make([]int, len(segs))
	for i, seg := range segs {
		shape[i] = len(seg)
	}
	return shape
}

// SameShape reports whether a and b have equal length and equal shape.
func SameShape(a, b Stream) bool {
	return len(a) == len(b) && slices.Equal(a.Shape(), b.Shape())
}

// Validate checks that every event has a known kind.
func (s Stream) Validate() error {
	for i, e := range s {
		if !e.Kind.Valid() {
			return fmt.Errorf("event %d: unknown kind %d", i, int(e.Kind))
		}
	}
	return nil
}

// Marshal converts a stream to JSON bytes.
func Marshal(s Stream) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a stream as a JSON array to w.
func Write(s Stream, w io.Writer) error {
	if s == nil {
		s = Stream{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]Event(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON array of events from r.
func Read(r io.Reader) (Stream, error) {
	var s Stream
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}
