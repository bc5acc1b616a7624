// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunkdelta

import (
	"bytes"
	"fmt"
)

// Span is one differing byte region between two payloads. Offset is
// the position in the *source* sequence (A for a forward delta) where
// Old begins; everything before Offset, and everything between the
// end of one span and the start of the next, is implicitly identical
// in both sequences.
type Span struct {
	Offset int
	Old    []byte
	New    []byte
}

// Delta is a reversible, composable edit script between two byte
// sequences: an ordered, non-overlapping list of Spans. An empty Delta
// means the two sequences are identical.
type Delta struct {
	Spans []Span
}

// IsUnchanged reports whether the delta carries no spans, i.e. the two
// payloads it was computed from are byte-identical.
func (d Delta) IsUnchanged() bool {
	return len(d.Spans) == 0
}

// Diff computes the delta that Apply(a, delta) turns into b.
func Diff(a, b []byte) Delta {
	return Delta{Spans: diffSpans(a, b)}
}

// Apply reconstructs B from A and a delta with Apply(A, Diff(A,B)) == B.
// It returns an error if a does not actually hold each span's Old
// bytes at the expected offset — the delta was computed against a
// different A than the one given.
func Apply(a []byte, d Delta) ([]byte, error) {
	out := make([]byte, 0, len(a))
	pos := 0
	for i, span := range d.Spans {
		if span.Offset < pos {
			return nil, fmt.Errorf("chunkdelta: span %d offset %d precedes cursor %d", i, span.Offset, pos)
		}
		if span.Offset+len(span.Old) > len(a) {
			return nil, fmt.Errorf("chunkdelta: span %d old range [%d,%d) exceeds input length %d", i, span.Offset, span.Offset+len(span.Old), len(a))
		}
		if !bytes.Equal(a[span.Offset:span.Offset+len(span.Old)], span.Old) {
			return nil, fmt.Errorf("chunkdelta: span %d expected different bytes at offset %d than the input holds", i, span.Offset)
		}
		out = append(out, a[pos:span.Offset]...)
		out = append(out, span.New...)
		pos = span.Offset + len(span.Old)
	}
	out = append(out, a[pos:]...)
	return out, nil
}

// Revert reconstructs A from B and a delta with Revert(B, Diff(A,B)) == A.
func Revert(b []byte, d Delta) ([]byte, error) {
	out := make([]byte, 0, len(b))
	pos := 0    // cursor into b
	shift := 0  // cumulative (len(New)-len(Old)) of spans already consumed
	for i, span := range d.Spans {
		bOffset := span.Offset + shift
		if bOffset < pos {
			return nil, fmt.Errorf("chunkdelta: span %d maps before cursor during revert", i)
		}
		if bOffset+len(span.New) > len(b) {
			return nil, fmt.Errorf("chunkdelta: span %d new range exceeds input length %d", i, len(b))
		}
		if !bytes.Equal(b[bOffset:bOffset+len(span.New)], span.New) {
			return nil, fmt.Errorf("chunkdelta: span %d expected different bytes at offset %d than the input holds", i, bOffset)
		}
		out = append(out, b[pos:bOffset]...)
		out = append(out, span.Old...)
		pos = bOffset + len(span.New)
		shift += len(span.New) - len(span.Old)
	}
	out = append(out, b[pos:]...)
	return out, nil
}
