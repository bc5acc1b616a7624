// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anvil

import "github.com/HairlessVillager/region-diff/lib/rderrors"

// ParseMCC parses a .mcc sidecar container: a single byte tag followed
// by the compressed payload. An empty byte slice parses as a
// single-slot container with the slot absent — this lets callers treat
// "sidecar file does not exist" and "sidecar file is empty" the same
// way, by simply reading zero bytes when the file is missing.
func ParseMCC(data []byte) (*Container, error) {
	c := NewContainer(MCCSlotCount)
	if len(data) == 0 {
		return c, nil
	}

	tag := data[0]
	if !validTag(tag) || tag == TagExternal {
		return nil, &rderrors.CorruptContainerError{Slot: 0, Reason: "invalid or external compression tag in .mcc file"}
	}

	c.Slots[0] = Slot{
		Present: true,
		Tag:     tag,
		Data:    append([]byte(nil), data[1:]...),
	}
	return c, nil
}

// SerializeMCC writes c in canonical .mcc form. An absent slot
// serializes to zero bytes, the same representation ParseMCC accepts
// for "no sidecar".
func SerializeMCC(c *Container) ([]byte, error) {
	if c.SlotCount != MCCSlotCount {
		return nil, &rderrors.CorruptContainerError{Slot: -1, Reason: "SerializeMCC requires a single-slot container"}
	}
	slot := c.Slots[0]
	if !slot.Present {
		return nil, nil
	}
	out := make([]byte, 1+len(slot.Data))
	out[0] = slot.Tag
	copy(out[1:], slot.Data)
	return out, nil
}
