// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anvil

import (
	"bytes"
	"testing"
)

func makeSlotData(t *testing.T, payload []byte, tag byte) []byte {
	t.Helper()
	out := make([]byte, 5+len(payload))
	length := uint32(1 + len(payload))
	out[0] = byte(length >> 24)
	out[1] = byte(length >> 16)
	out[2] = byte(length >> 8)
	out[3] = byte(length)
	out[4] = tag
	copy(out[5:], payload)
	return out
}

func TestSerializeParseRegionRoundTrip(t *testing.T) {
	c := NewContainer(RegionSlotCount)
	c.Slots[0] = Slot{Present: true, Timestamp: 111, Tag: TagZlib, Data: []byte("zlib payload bytes")}
	c.Slots[5] = Slot{Present: true, Timestamp: 222, Tag: TagUncompressed, Data: bytes.Repeat([]byte{0xAB}, 9000)}
	c.Slots[1023] = Slot{Present: true, Timestamp: 333, Tag: TagGzip, Data: []byte("last slot")}

	data, err := SerializeRegion(c)
	if err != nil {
		t.Fatalf("SerializeRegion: %v", err)
	}
	if len(data)%SectorSize != 0 {
		t.Fatalf("serialized size %d is not sector-aligned", len(data))
	}

	parsed, err := ParseRegion(data)
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}

	for _, i := range []int{0, 5, 1023} {
		want, got := c.Slots[i], parsed.Slots[i]
		if got.Present != want.Present || got.Timestamp != want.Timestamp || got.Tag != want.Tag || !bytes.Equal(got.Data, want.Data) {
			t.Fatalf("slot %d round trip mismatch: got %+v, want %+v", i, got, want)
		}
	}
	for i, slot := range parsed.Slots {
		if i == 0 || i == 5 || i == 1023 {
			continue
		}
		if slot.Present {
			t.Fatalf("slot %d unexpectedly present after round trip", i)
		}
	}
}

func TestSerializeRegionIsFixedPoint(t *testing.T) {
	c := NewContainer(RegionSlotCount)
	c.Slots[2] = Slot{Present: true, Timestamp: 7, Tag: TagZlib, Data: []byte("fixed point check")}

	first, err := SerializeRegion(c)
	if err != nil {
		t.Fatalf("SerializeRegion: %v", err)
	}
	parsed, err := ParseRegion(first)
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	second, err := SerializeRegion(parsed)
	if err != nil {
		t.Fatalf("SerializeRegion (second): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("serialize(parse(serialize(x))) != serialize(x)")
	}
}

func TestParseRegionRejectsShortHeader(t *testing.T) {
	_, err := ParseRegion(make([]byte, SectorSize))
	if err == nil {
		t.Fatal("expected an error for a file shorter than the header")
	}
	if _, ok := err.(interface{ Error() string }); !ok {
		t.Fatal("expected a non-nil error")
	}
}

func TestParseRegionRejectsOverlappingSectors(t *testing.T) {
	data := make([]byte, 4*SectorSize)
	// Two slots both claim sector 2.
	data[0], data[1], data[2], data[3] = 0, 0, 2, 1
	data[4], data[5], data[6], data[7] = 0, 0, 2, 1
	copy(data[2*SectorSize:], makeSlotData(t, []byte("a"), TagUncompressed))

	_, err := ParseRegion(data)
	if err == nil {
		t.Fatal("expected an error for overlapping sector claims")
	}
}

func TestParseRegionRejectsUnrecognizedTag(t *testing.T) {
	data := make([]byte, 3*SectorSize)
	data[3] = 1 // slot 0 occupies 1 sector starting at sector... offset bytes are 0,0,2
	data[0], data[1], data[2], data[3] = 0, 0, 2, 1
	copy(data[2*SectorSize:], makeSlotData(t, []byte("x"), 99))

	_, err := ParseRegion(data)
	if err == nil {
		t.Fatal("expected an error for an unrecognized compression tag")
	}
}

func TestSerializeRegionRejectsWrongSlotCount(t *testing.T) {
	c := NewContainer(MCCSlotCount)
	if _, err := SerializeRegion(c); err == nil {
		t.Fatal("expected an error when slot count does not match RegionSlotCount")
	}
}

func TestSetExternalData(t *testing.T) {
	c := NewContainer(RegionSlotCount)
	c.Slots[9] = Slot{Present: true, Tag: TagExternal}

	if !c.Slots[9].External() {
		t.Fatal("expected slot 9 to report External() true")
	}
	if err := c.SetExternalData(9, TagZlib, []byte("resolved payload")); err != nil {
		t.Fatalf("SetExternalData: %v", err)
	}
	if c.Slots[9].External() {
		t.Fatal("slot should no longer be external after SetExternalData")
	}
	if c.Slots[9].Tag != TagZlib || !bytes.Equal(c.Slots[9].Data, []byte("resolved payload")) {
		t.Fatalf("unexpected slot state after SetExternalData: %+v", c.Slots[9])
	}
}

func TestSetExternalDataRejectsNonExternalSlot(t *testing.T) {
	c := NewContainer(RegionSlotCount)
	c.Slots[0] = Slot{Present: true, Tag: TagZlib, Data: []byte("already inline")}
	if err := c.SetExternalData(0, TagZlib, []byte("x")); err == nil {
		t.Fatal("expected an error when the slot is not external")
	}
}
