// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diffformat

import (
	"bytes"
	"testing"

	"github.com/HairlessVillager/region-diff/lib/chunkdelta"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

func TestRoundTripAllKinds(t *testing.T) {
	entries := []Entry{
		NewUnchanged(),
		NewAdded(111, 2, []byte("new chunk payload")),
		NewRemoved(222, 1, []byte("old chunk payload")),
		NewModified(
			Meta{Timestamp: 10, Tag: 2},
			Meta{Timestamp: 20, Tag: 2},
			chunkdelta.Diff([]byte("before-edit-after"), []byte("before-CHANGED-after")),
		),
		NewModified(Meta{Timestamp: 5, Tag: 1}, Meta{Timestamp: 5, Tag: 4}, chunkdelta.Delta{}),
	}

	body := Serialize(entries)
	got, err := Deserialize(body)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if !entryEqual(got[i], entries[i]) {
			t.Fatalf("entry %d round-tripped to %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	entries := []Entry{
		NewAdded(1, 2, []byte("a")),
		NewModified(Meta{Timestamp: 1}, Meta{Timestamp: 2}, chunkdelta.Diff([]byte("aaa"), []byte("bbb"))),
	}
	a := Serialize(entries)
	b := Serialize(entries)
	if !bytes.Equal(a, b) {
		t.Fatal("Serialize produced different bytes for the same entries")
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	body := Serialize(nil)
	body[0] = 'X'
	_, err := Deserialize(body)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	var corrupt *rderrors.CorruptDiffError
	if !asCorrupt(err, &corrupt) {
		t.Fatalf("expected *rderrors.CorruptDiffError, got %T: %v", err, err)
	}
}

func TestDeserializeRejectsFutureVersion(t *testing.T) {
	body := Serialize(nil)
	body[4] = 0xFF // high byte of the u16 version field
	body[5] = 0xFF
	_, err := Deserialize(body)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if _, ok := err.(*rderrors.UnsupportedVersionError); !ok {
		t.Fatalf("expected *rderrors.UnsupportedVersionError, got %T: %v", err, err)
	}
}

func TestDeserializeRejectsTruncation(t *testing.T) {
	body := Serialize([]Entry{NewAdded(1, 2, []byte("hello"))})
	_, err := Deserialize(body[:len(body)-2])
	if err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	body := Serialize(nil)
	body = append(body, 0xFF)
	_, err := Deserialize(body)
	if err == nil {
		t.Fatal("expected error for trailing bytes")
	}
}

func entryEqual(a, b Entry) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Unchanged:
		return true
	case Added, Removed:
		return a.Timestamp == b.Timestamp && a.Tag == b.Tag && bytes.Equal(a.Payload, b.Payload)
	case Modified:
		if a.OldMeta != b.OldMeta || a.NewMeta != b.NewMeta {
			return false
		}
		if len(a.Delta.Spans) != len(b.Delta.Spans) {
			return false
		}
		for i := range a.Delta.Spans {
			sa, sb := a.Delta.Spans[i], b.Delta.Spans[i]
			if sa.Offset != sb.Offset || !bytes.Equal(sa.Old, sb.Old) || !bytes.Equal(sa.New, sb.New) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func asCorrupt(err error, target **rderrors.CorruptDiffError) bool {
	c, ok := err.(*rderrors.CorruptDiffError)
	if ok {
		*target = c
	}
	return ok
}
