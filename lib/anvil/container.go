// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anvil

import (
	"encoding/binary"
	"fmt"

	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

// Compression tags as they appear on disk in a region file payload
// header. These are protocol constants (§3, §4.2 of the engine
// specification) — changing them breaks compatibility with existing
// region files.
const (
	TagGzip         byte = 1
	TagZlib         byte = 2
	TagUncompressed byte = 3
	TagLZ4          byte = 4
	TagExternal     byte = 127
)

// SectorSize is the on-disk alignment unit for region-file payload
// sectors, and the size of each of the two header tables.
const SectorSize = 4096

// RegionSlotCount is the number of addressable slots in a region or
// entities container (32x32 chunks).
const RegionSlotCount = 1024

// MCCSlotCount is the number of addressable slots in a .mcc sidecar
// container: always exactly one.
const MCCSlotCount = 1

// Slot is the state of one chunk position in a container.
type Slot struct {
	// Present is false for an empty slot; Tag and Data are then
	// zero/nil, and Timestamp keeps whatever the header table held.
	// All three must be ignored for an empty slot.
	Present bool

	// Timestamp is the opaque 32-bit value recorded for this slot.
	// Always 0 for .mcc containers, which carry no timestamp table.
	Timestamp uint32

	// Tag is the on-disk compression tag (TagGzip, TagZlib,
	// TagUncompressed, TagLZ4, or TagExternal).
	Tag byte

	// Data is the raw compressed payload bytes. For a slot with
	// Tag == TagExternal, Data holds whatever bytes (possibly none)
	// trailed the tag byte in the .mca payload; the real payload
	// lives in a sidecar .mcc file and must be attached separately
	// with SetExternalData before the slot can be decompressed.
	Data []byte
}

// External reports whether this slot's real payload lives in a .mcc
// sidecar rather than inline in the container.
func (s Slot) External() bool {
	return s.Present && s.Tag == TagExternal
}

// Container is a parsed anvil container: a fixed number of slots plus
// enough bookkeeping to reserialize canonically.
type Container struct {
	// SlotCount is RegionSlotCount for a region/entities container,
	// or MCCSlotCount for a .mcc sidecar.
	SlotCount int

	// Slots holds SlotCount entries in slot-index order
	// (i = cz*32 + cx for region containers).
	Slots []Slot
}

// NewContainer creates an empty container (all slots absent) with the
// given slot count.
func NewContainer(slotCount int) *Container {
	return &Container{SlotCount: slotCount, Slots: make([]Slot, slotCount)}
}

// SetExternalData attaches the real compressed payload (read from a
// .mcc sidecar) to a slot previously parsed with Tag == TagExternal,
// replacing its tag with the sidecar's own tag byte. After this call
// the slot behaves like any inline slot for decompression purposes.
func (c *Container) SetExternalData(slot int, tag byte, data []byte) error {
	if slot < 0 || slot >= len(c.Slots) {
		return fmt.Errorf("anvil: slot %d out of range [0, %d)", slot, len(c.Slots))
	}
	if !c.Slots[slot].External() {
		return fmt.Errorf("anvil: slot %d is not external", slot)
	}
	c.Slots[slot].Tag = tag
	c.Slots[slot].Data = data
	return nil
}

// sectorCount returns the number of 4096-byte sectors needed to hold
// n bytes, rounding up.
func sectorCount(n int) int {
	return (n + SectorSize - 1) / SectorSize
}

// ParseRegion parses a region or entities container (the sector-aligned
// .mca layout) from data. Slots with Tag == TagExternal are returned
// with whatever trailing bytes the payload carried (usually none); the
// caller is responsible for locating and attaching the matching .mcc
// sidecar via SetExternalData before decompressing those slots.
func ParseRegion(data []byte) (*Container, error) {
	headerSize := 2 * SectorSize
	if len(data) < headerSize {
		return nil, &rderrors.CorruptContainerError{Slot: -1, Reason: fmt.Sprintf("file is %d bytes, shorter than the %d-byte header", len(data), headerSize)}
	}

	c := NewContainer(RegionSlotCount)

	type location struct {
		offset, count int
	}
	locations := make([]location, RegionSlotCount)

	for i := 0; i < RegionSlotCount; i++ {
		entry := data[i*4 : i*4+4]
		offset := int(entry[0])<<16 | int(entry[1])<<8 | int(entry[2])
		count := int(entry[3])
		locations[i] = location{offset: offset, count: count}

		timestampEntry := data[SectorSize+i*4 : SectorSize+i*4+4]
		c.Slots[i].Timestamp = binary.BigEndian.Uint32(timestampEntry)
	}

	// Detect sector overlap: build an occupancy map over the sector
	// range and fail if two non-empty slots claim the same sector.
	var maxSector int
	for _, loc := range locations {
		if loc.offset+loc.count > maxSector {
			maxSector = loc.offset + loc.count
		}
	}
	owner := make([]int, maxSector)
	for i := range owner {
		owner[i] = -1
	}
	for i, loc := range locations {
		if loc.count == 0 && loc.offset == 0 {
			continue // empty slot
		}
		if loc.offset < 2 {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "sector offset overlaps the header"}
		}
		for s := loc.offset; s < loc.offset+loc.count; s++ {
			if owner[s] != -1 {
				return nil, &rderrors.CorruptContainerError{Slot: i, Reason: fmt.Sprintf("sector %d already claimed by slot %d", s, owner[s])}
			}
			owner[s] = i
		}
	}

	for i, loc := range locations {
		if loc.count == 0 && loc.offset == 0 {
			continue // empty slot, nothing more to parse
		}

		byteOffset := loc.offset * SectorSize
		sectorBytes := loc.count * SectorSize
		if byteOffset+sectorBytes > len(data) {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "sector range extends past end of file"}
		}

		payload := data[byteOffset : byteOffset+sectorBytes]
		if len(payload) < 5 {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "payload shorter than the 5-byte length+tag header"}
		}

		length := binary.BigEndian.Uint32(payload[0:4])
		if length == 0 {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "payload length is zero"}
		}
		if int(length)+4 > len(payload) {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: fmt.Sprintf("payload length %d overruns allocated sectors", length)}
		}

		tag := payload[4]
		if !validTag(tag) {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: fmt.Sprintf("unrecognized compression tag %d", tag)}
		}

		body := payload[5 : 4+length]
		c.Slots[i].Present = true
		c.Slots[i].Tag = tag
		c.Slots[i].Data = append([]byte(nil), body...)
	}

	return c, nil
}

func validTag(tag byte) bool {
	switch tag {
	case TagGzip, TagZlib, TagUncompressed, TagLZ4, TagExternal:
		return true
	default:
		return false
	}
}

// SerializeRegion writes c in canonical form: slots are assigned to
// sectors in increasing slot-index order, each starting at the next
// free sector boundary, padded with zero bytes to a whole number of
// sectors. serialize(parse(x)) is a fixed point of this function —
// reparsing and reserializing the result yields identical bytes.
func SerializeRegion(c *Container) ([]byte, error) {
	if c.SlotCount != RegionSlotCount {
		return nil, fmt.Errorf("anvil: SerializeRegion requires %d slots, got %d", RegionSlotCount, c.SlotCount)
	}

	type placement struct {
		offset, count int
		payload       []byte
	}
	placements := make([]placement, RegionSlotCount)

	nextSector := 2 // sectors 0-1 are the header tables
	for i, slot := range c.Slots {
		if !slot.Present {
			continue
		}
		if len(slot.Data) > 0xFFFFFFFF-5 {
			return nil, fmt.Errorf("anvil: slot %d payload too large to encode a length prefix", i)
		}

		payload := make([]byte, 5+len(slot.Data))
		binary.BigEndian.PutUint32(payload[0:4], uint32(1+len(slot.Data)))
		payload[4] = slot.Tag
		copy(payload[5:], slot.Data)

		count := sectorCount(len(payload))
		if count > 255 {
			return nil, fmt.Errorf("anvil: slot %d needs %d sectors, more than the 255 a region entry can address", i, count)
		}

		placements[i] = placement{offset: nextSector, count: count, payload: payload}
		nextSector += count
	}

	totalSectors := nextSector
	out := make([]byte, totalSectors*SectorSize)

	for i, slot := range c.Slots {
		p := placements[i]
		if slot.Present {
			entry := out[i*4 : i*4+4]
			entry[0] = byte(p.offset >> 16)
			entry[1] = byte(p.offset >> 8)
			entry[2] = byte(p.offset)
			entry[3] = byte(p.count)

			copy(out[p.offset*SectorSize:], p.payload)
		}
		binary.BigEndian.PutUint32(out[SectorSize+i*4:SectorSize+i*4+4], slot.Timestamp)
	}

	return out, nil
}
