// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diffformat

import "github.com/HairlessVillager/region-diff/lib/chunkdelta"

// Kind is the per-chunk diff entry discriminant as it appears on the
// wire: {0=Unchanged, 1=Added, 2=Removed, 3=Modified}.
type Kind uint8

const (
	Unchanged Kind = iota
	Added
	Removed
	Modified
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "invalid"
	}
}

// Meta is the (timestamp, compression_tag) pair recorded for one side
// of a Modified entry.
type Meta struct {
	Timestamp uint32
	Tag       byte
}

// Entry is one slot's diff entry. Only the fields relevant to Kind are
// meaningful; the rest are zero and must be ignored.
type Entry struct {
	Kind Kind

	// Added, Removed
	Timestamp uint32
	Tag       byte
	Payload   []byte

	// Modified
	OldMeta Meta
	NewMeta Meta
	Delta   chunkdelta.Delta
}

// NewUnchanged returns the entry recorded when both sides of a slot
// are byte-identical.
func NewUnchanged() Entry {
	return Entry{Kind: Unchanged}
}

// NewAdded returns the entry recorded when a slot is absent in the old
// container and present in the new one.
func NewAdded(timestamp uint32, tag byte, payload []byte) Entry {
	return Entry{Kind: Added, Timestamp: timestamp, Tag: tag, Payload: payload}
}

// NewRemoved returns the entry recorded when a slot is present in the
// old container and absent in the new one. It carries the old payload
// so Revert can reconstruct it.
func NewRemoved(timestamp uint32, tag byte, payload []byte) Entry {
	return Entry{Kind: Removed, Timestamp: timestamp, Tag: tag, Payload: payload}
}

// NewModified returns the entry recorded when a slot is present on
// both sides but differs.
func NewModified(oldMeta, newMeta Meta, delta chunkdelta.Delta) Entry {
	return Entry{Kind: Modified, OldMeta: oldMeta, NewMeta: newMeta, Delta: delta}
}
