// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunkdelta

import "fmt"

// taggedRange is one delta's span re-expressed in B-space (the shared
// coordinate system between a forward delta A->B and a forward delta
// B->C): [lo, hi) is the byte range the span occupies in B, fromD1
// distinguishes which input delta it came from, and span is the
// original Span value.
type taggedRange struct {
	lo, hi int
	fromD1 bool
	span   Span
}

// Squash composes d1: A->B and d2: B->C into a delta A->C, such that
// Apply(A, Squash(d1,d2)) == Apply(Apply(A,d1), d2). It never needs B
// itself: every Span carries both of its sides, so the shared B-space
// coordinate lets overlapping or adjacent spans from the two deltas be
// merged directly, verifying consistency where they overlap.
func Squash(d1, d2 Delta) (Delta, error) {
	if d1.IsUnchanged() {
		return d2, nil
	}
	if d2.IsUnchanged() {
		return d1, nil
	}

	ranges := make([]taggedRange, 0, len(d1.Spans)+len(d2.Spans))

	shift := 0
	for _, span := range d1.Spans {
		lo := span.Offset + shift
		hi := lo + len(span.New)
		ranges = append(ranges, taggedRange{lo: lo, hi: hi, fromD1: true, span: span})
		shift += len(span.New) - len(span.Old)
	}
	for _, span := range d2.Spans {
		lo := span.Offset
		hi := lo + len(span.Old)
		ranges = append(ranges, taggedRange{lo: lo, hi: hi, fromD1: false, span: span})
	}

	sortRangesByLo(ranges)

	var out []Span
	d1Shift := 0 // cumulative (len(New)-len(Old)) of d1 spans in groups already composed
	i := 0
	for i < len(ranges) {
		group := []taggedRange{ranges[i]}
		lo, hi := ranges[i].lo, ranges[i].hi
		i++
		for i < len(ranges) && ranges[i].lo <= hi {
			group = append(group, ranges[i])
			if ranges[i].hi > hi {
				hi = ranges[i].hi
			}
			i++
		}

		span, err := composeGroup(group, lo, hi)
		if err != nil {
			return Delta{}, err
		}
		hasD1 := false
		for _, r := range group {
			if r.fromD1 {
				hasD1 = true
				d1Shift += len(r.span.New) - len(r.span.Old)
			}
		}
		if !hasD1 {
			// composeGroup returned the B-space start; re-base it onto A.
			span.Offset -= d1Shift
		}
		out = append(out, span)
	}

	return Delta{Spans: out}, nil
}

// composeGroup builds the single A->C span equivalent to every d1/d2
// span touching the shared B-range [lo, hi).
func composeGroup(group []taggedRange, lo, hi int) (Span, error) {
	groupLen := hi - lo
	bBuf := make([]byte, groupLen)
	filled := make([]bool, groupLen)

	fill := func(localStart int, data []byte, label string) error {
		for k, b := range data {
			pos := localStart + k
			if pos < 0 || pos >= groupLen {
				return fmt.Errorf("chunkdelta: %s span writes outside its group range", label)
			}
			if filled[pos] && bBuf[pos] != b {
				return fmt.Errorf("chunkdelta: incompatible squash: %s disagrees with the other delta at byte offset %d of the shared region", label, lo+pos)
			}
			bBuf[pos] = b
			filled[pos] = true
		}
		return nil
	}

	for _, r := range group {
		localStart := r.lo - lo
		if r.fromD1 {
			if err := fill(localStart, r.span.New, "d1.new"); err != nil {
				return Span{}, err
			}
		} else {
			if err := fill(localStart, r.span.Old, "d2.old"); err != nil {
				return Span{}, err
			}
		}
	}
	for pos, ok := range filled {
		if !ok {
			return Span{}, fmt.Errorf("chunkdelta: internal error: byte offset %d of shared region left unfilled during squash", lo+pos)
		}
	}

	d1Spans := onlyD1(group)
	d2Spans := onlyD2(group)

	offsetA, err := groupStartOffsetA(group, lo)
	if err != nil {
		return Span{}, err
	}

	oldBytes := buildSide(bBuf, d1Spans, func(s Span) []byte { return s.Old }, func(s Span) int { return len(s.New) })
	newBytes := buildSide(bBuf, d2Spans, func(s Span) []byte { return s.New }, func(s Span) int { return len(s.Old) })

	return Span{Offset: offsetA, Old: oldBytes, New: newBytes}, nil
}

// buildSide reconstructs one side (A or C) of the composed span: walk
// the shared B-buffer in order, substituting each contributing span's
// atomic side bytes at its position and otherwise passing the B bytes
// through unchanged (valid because a byte not covered by a span from
// this delta is, by definition, unchanged by that delta).
func buildSide(bBuf []byte, spans []taggedSpan, side func(Span) []byte, bLen func(Span) int) []byte {
	out := make([]byte, 0, len(bBuf))
	cursor := 0
	for _, ts := range spans {
		if ts.localStart > cursor {
			out = append(out, bBuf[cursor:ts.localStart]...)
		}
		out = append(out, side(ts.span)...)
		cursor = ts.localStart + bLen(ts.span)
	}
	if cursor < len(bBuf) {
		out = append(out, bBuf[cursor:]...)
	}
	return out
}

type taggedSpan struct {
	localStart int
	span       Span
}

func onlyD1(group []taggedRange) []taggedSpan {
	var out []taggedSpan
	lo := groupLo(group)
	for _, r := range group {
		if r.fromD1 {
			out = append(out, taggedSpan{localStart: r.lo - lo, span: r.span})
		}
	}
	sortTaggedSpans(out)
	return out
}

func onlyD2(group []taggedRange) []taggedSpan {
	var out []taggedSpan
	lo := groupLo(group)
	for _, r := range group {
		if !r.fromD1 {
			out = append(out, taggedSpan{localStart: r.lo - lo, span: r.span})
		}
	}
	sortTaggedSpans(out)
	return out
}

func groupLo(group []taggedRange) int {
	lo := group[0].lo
	for _, r := range group {
		if r.lo < lo {
			lo = r.lo
		}
	}
	return lo
}

// groupStartOffsetA determines the A-space offset where the composed
// span begins. If a d1 span in the group starts exactly at the
// group's low boundary, that span's own Offset is the answer
// directly. Otherwise the boundary lies in a region d1 left
// unchanged, so the A-space offset equals the B-space offset minus
// whatever length shift earlier (outside this group) d1 spans
// already introduced — which is exactly group.lo minus the group's
// own first d1 span's (bStart - aOffset) skew. With no d1 span at all
// in the group it returns the B-space offset itself; Squash then
// subtracts the shift introduced by the d1 spans of earlier groups.
func groupStartOffsetA(group []taggedRange, lo int) (int, error) {
	var bestSkew *int
	for _, r := range group {
		if !r.fromD1 {
			continue
		}
		skew := r.lo - r.span.Offset // how far B has drifted from A at this span's start
		if bestSkew == nil {
			bestSkew = new(int)
			*bestSkew = skew
		}
	}
	if bestSkew == nil {
		return lo, nil
	}
	return lo - *bestSkew, nil
}

func sortRangesByLo(ranges []taggedRange) {
	// Small insertion sort: delta span counts per chunk are tiny
	// (a handful of edits), so this avoids pulling in sort just for
	// a handful of comparisons, while staying obviously stable.
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j].lo < ranges[j-1].lo; j-- {
			ranges[j], ranges[j-1] = ranges[j-1], ranges[j]
		}
	}
}

func sortTaggedSpans(spans []taggedSpan) {
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].localStart < spans[j-1].localStart; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
}
