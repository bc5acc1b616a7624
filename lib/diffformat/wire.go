// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diffformat

import (
	"encoding/binary"
	"fmt"

	"github.com/HairlessVillager/region-diff/lib/chunkdelta"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

// Magic is the 4-byte identifier at the start of every diff body.
var Magic = [4]byte{'R', 'M', 'D', 'F'}

// CurrentVersion is the highest wire version this build understands.
const CurrentVersion uint16 = 1

// Serialize writes entries in slot order as a complete diff body:
// magic, version, slot count, then one wire entry per slot. The
// result is the uncompressed diff body; wrapping it with the chosen
// lib/chunkcodec kind is the engine package's responsibility.
func Serialize(entries []Entry) []byte {
	w := newWriter()
	w.bytes(Magic[:])
	w.u16(CurrentVersion)
	w.u16(uint16(len(entries)))
	for _, e := range entries {
		writeEntry(w, e)
	}
	return w.buf
}

// Deserialize parses a diff body written by Serialize.
func Deserialize(data []byte) ([]Entry, error) {
	r := newReader(data)

	var magic [4]byte
	if err := r.fixed(magic[:]); err != nil {
		return nil, &rderrors.CorruptDiffError{Reason: err.Error()}
	}
	if magic != Magic {
		return nil, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("bad magic %q", magic[:])}
	}

	version, err := r.u16()
	if err != nil {
		return nil, &rderrors.CorruptDiffError{Reason: err.Error()}
	}
	if version > CurrentVersion {
		return nil, &rderrors.UnsupportedVersionError{Found: version, MaxSupported: CurrentVersion}
	}

	slotCount, err := r.u16()
	if err != nil {
		return nil, &rderrors.CorruptDiffError{Reason: err.Error()}
	}

	entries := make([]Entry, slotCount)
	for i := range entries {
		entry, err := readEntry(r)
		if err != nil {
			return nil, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("slot %d: %v", i, err)}
		}
		entries[i] = entry
	}
	if !r.atEnd() {
		return nil, &rderrors.CorruptDiffError{Reason: "trailing bytes after the last slot entry"}
	}
	return entries, nil
}

func writeEntry(w *writer, e Entry) {
	w.u8(byte(e.Kind))
	switch e.Kind {
	case Unchanged:
		// no payload
	case Added, Removed:
		w.u32(e.Timestamp)
		w.u8(e.Tag)
		w.lenPrefixed(e.Payload)
	case Modified:
		w.u32(e.OldMeta.Timestamp)
		w.u8(e.OldMeta.Tag)
		w.u32(e.NewMeta.Timestamp)
		w.u8(e.NewMeta.Tag)
		writeDelta(w, e.Delta)
	}
}

func readEntry(r *reader) (Entry, error) {
	kindByte, err := r.u8()
	if err != nil {
		return Entry{}, err
	}
	kind := Kind(kindByte)

	switch kind {
	case Unchanged:
		return NewUnchanged(), nil
	case Added, Removed:
		ts, err := r.u32()
		if err != nil {
			return Entry{}, err
		}
		tag, err := r.u8()
		if err != nil {
			return Entry{}, err
		}
		payload, err := r.lenPrefixed()
		if err != nil {
			return Entry{}, err
		}
		if kind == Added {
			return NewAdded(ts, tag, payload), nil
		}
		return NewRemoved(ts, tag, payload), nil
	case Modified:
		oldTS, err := r.u32()
		if err != nil {
			return Entry{}, err
		}
		oldTag, err := r.u8()
		if err != nil {
			return Entry{}, err
		}
		newTS, err := r.u32()
		if err != nil {
			return Entry{}, err
		}
		newTag, err := r.u8()
		if err != nil {
			return Entry{}, err
		}
		delta, err := readDelta(r)
		if err != nil {
			return Entry{}, err
		}
		return NewModified(Meta{Timestamp: oldTS, Tag: oldTag}, Meta{Timestamp: newTS, Tag: newTag}, delta), nil
	default:
		return Entry{}, fmt.Errorf("unrecognized entry discriminant %d", kindByte)
	}
}

func writeDelta(w *writer, d chunkdelta.Delta) {
	w.u32(uint32(len(d.Spans)))
	for _, span := range d.Spans {
		w.u32(uint32(span.Offset))
		w.lenPrefixed(span.Old)
		w.lenPrefixed(span.New)
	}
}

func readDelta(r *reader) (chunkdelta.Delta, error) {
	spanCount, err := r.u32()
	if err != nil {
		return chunkdelta.Delta{}, err
	}
	spans := make([]chunkdelta.Span, spanCount)
	for i := range spans {
		offset, err := r.u32()
		if err != nil {
			return chunkdelta.Delta{}, err
		}
		oldBytes, err := r.lenPrefixed()
		if err != nil {
			return chunkdelta.Delta{}, err
		}
		newBytes, err := r.lenPrefixed()
		if err != nil {
			return chunkdelta.Delta{}, err
		}
		spans[i] = chunkdelta.Span{Offset: int(offset), Old: oldBytes, New: newBytes}
	}
	return chunkdelta.Delta{Spans: spans}, nil
}

// writer accumulates a wire-format body.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) u8(v byte) { w.buf = append(w.buf, v) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) lenPrefixed(b []byte) {
	w.u32(uint32(len(b)))
	w.bytes(b)
}

// reader walks a wire-format body, reporting truncation as an error
// rather than panicking on a short slice.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) atEnd() bool { return r.pos == len(r.data) }

func (r *reader) fixed(dst []byte) error {
	if len(r.data)-r.pos < len(dst) {
		return fmt.Errorf("truncated: need %d bytes, have %d", len(dst), len(r.data)-r.pos)
	}
	copy(dst, r.data[r.pos:r.pos+len(dst)])
	r.pos += len(dst)
	return nil
}

func (r *reader) u8() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("truncated: expected 1 more byte")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	if len(r.data)-r.pos < 2 {
		return 0, fmt.Errorf("truncated: expected a 2-byte integer")
	}
	v := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if len(r.data)-r.pos < 4 {
		return 0, fmt.Errorf("truncated: expected a 4-byte integer")
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) lenPrefixed() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(len(r.data)-r.pos) < uint64(n) {
		return nil, fmt.Errorf("truncated: length-prefixed string claims %d bytes, only %d remain", n, len(r.data)-r.pos)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}
