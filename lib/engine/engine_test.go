// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"testing"

	"github.com/HairlessVillager/region-diff/lib/anvil"
	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
)

func makeSlot(t *testing.T, payload []byte, ts uint32, kind chunkcodec.Kind) anvil.Slot {
	t.Helper()
	tag, data, err := anvil.Compress(payload, kind)
	if err != nil {
		t.Fatalf("anvil.Compress: %v", err)
	}
	return anvil.Slot{Present: true, Timestamp: ts, Tag: tag, Data: data}
}

func containerOf(slots ...anvil.Slot) *anvil.Container {
	return &anvil.Container{SlotCount: len(slots), Slots: slots}
}

func slotPayload(t *testing.T, slot anvil.Slot) []byte {
	t.Helper()
	if !slot.Present {
		return nil
	}
	payload, err := anvil.Decompress(slot)
	if err != nil {
		t.Fatalf("anvil.Decompress: %v", err)
	}
	return payload
}

// buildScenario returns a 5-slot old/new container pair covering an
// unchanged slot, an added slot, a removed slot, a modified slot, and
// a slot unchanged in payload but re-timestamped (still Modified per
// the Unchanged definition).
func buildScenario(t *testing.T) (old, newC *anvil.Container) {
	t.Helper()
	old = containerOf(
		makeSlot(t, []byte("unchanged payload"), 100, chunkcodec.None),
		anvil.Slot{},
		makeSlot(t, []byte("about to be removed"), 100, chunkcodec.Zlib),
		makeSlot(t, []byte("old modified payload, lots of bytes padding out"), 100, chunkcodec.None),
		makeSlot(t, []byte("same bytes, different timestamp"), 100, chunkcodec.None),
	)
	newC = containerOf(
		makeSlot(t, []byte("unchanged payload"), 100, chunkcodec.None),
		makeSlot(t, []byte("newly added"), 200, chunkcodec.LZ4),
		anvil.Slot{},
		makeSlot(t, []byte("new modified payload, lots of bytes padding changed"), 150, chunkcodec.None),
		makeSlot(t, []byte("same bytes, different timestamp"), 999, chunkcodec.None),
	)
	return old, newC
}

func TestDiffPatchRoundTrip(t *testing.T) {
	old, newC := buildScenario(t)

	diffBytes, err := Diff(old, newC, chunkcodec.Zlib, 2)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	patched, err := Patch(old, diffBytes, chunkcodec.Zlib, 2)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	for i := range newC.Slots {
		want := slotPayload(t, newC.Slots[i])
		got := slotPayload(t, patched.Slots[i])
		if !bytes.Equal(got, want) {
			t.Fatalf("slot %d payload = %q, want %q", i, got, want)
		}
		if patched.Slots[i].Present != newC.Slots[i].Present {
			t.Fatalf("slot %d present = %v, want %v", i, patched.Slots[i].Present, newC.Slots[i].Present)
		}
		if patched.Slots[i].Present && patched.Slots[i].Timestamp != newC.Slots[i].Timestamp {
			t.Fatalf("slot %d timestamp = %d, want %d", i, patched.Slots[i].Timestamp, newC.Slots[i].Timestamp)
		}
	}
}

func TestDiffRevertRoundTrip(t *testing.T) {
	old, newC := buildScenario(t)

	diffBytes, err := Diff(old, newC, chunkcodec.None, 3)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	reverted, err := Revert(newC, diffBytes, chunkcodec.None, 3)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}

	for i := range old.Slots {
		want := slotPayload(t, old.Slots[i])
		got := slotPayload(t, reverted.Slots[i])
		if !bytes.Equal(got, want) {
			t.Fatalf("slot %d payload = %q, want %q", i, got, want)
		}
		if reverted.Slots[i].Present != old.Slots[i].Present {
			t.Fatalf("slot %d present = %v, want %v", i, reverted.Slots[i].Present, old.Slots[i].Present)
		}
	}
}

func TestPatchRejectsMismatchedBase(t *testing.T) {
	old, newC := buildScenario(t)
	diffBytes, err := Diff(old, newC, chunkcodec.None, 1)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	wrongSlots := append([]anvil.Slot{}, old.Slots...)
	wrongSlots[3] = makeSlot(t, []byte("completely different base payload here"), 100, chunkcodec.None)
	wrongOld := containerOf(wrongSlots...)

	if _, err := Patch(wrongOld, diffBytes, chunkcodec.None, 1); err == nil {
		t.Fatal("expected an error when patching against a mismatched base container")
	}
}

func TestSquashMatchesSequentialDiffPatch(t *testing.T) {
	a := containerOf(
		makeSlot(t, []byte("slot zero version A"), 1, chunkcodec.None),
		makeSlot(t, []byte("slot one version A, a bit longer"), 1, chunkcodec.Zlib),
		anvil.Slot{},
	)
	b := containerOf(
		makeSlot(t, []byte("slot zero version B, changed"), 2, chunkcodec.None),
		makeSlot(t, []byte("slot one version A, a bit longer"), 1, chunkcodec.Zlib),
		makeSlot(t, []byte("slot two newly appeared in B"), 5, chunkcodec.None),
	)
	c := containerOf(
		makeSlot(t, []byte("slot zero version C, changed again"), 3, chunkcodec.None),
		anvil.Slot{},
		makeSlot(t, []byte("slot two newly appeared in B"), 5, chunkcodec.None),
	)

	d1, err := Diff(a, b, chunkcodec.None, 2)
	if err != nil {
		t.Fatalf("Diff(a,b): %v", err)
	}
	d2, err := Diff(b, c, chunkcodec.None, 2)
	if err != nil {
		t.Fatalf("Diff(b,c): %v", err)
	}

	squashed, err := Squash(d1, d2, chunkcodec.None, 2)
	if err != nil {
		t.Fatalf("Squash: %v", err)
	}

	viaSquash, err := Patch(a, squashed, chunkcodec.None, 2)
	if err != nil {
		t.Fatalf("Patch(a, squashed): %v", err)
	}

	for i := range c.Slots {
		want := slotPayload(t, c.Slots[i])
		got := slotPayload(t, viaSquash.Slots[i])
		if !bytes.Equal(got, want) {
			t.Fatalf("slot %d payload = %q, want %q", i, got, want)
		}
		if viaSquash.Slots[i].Present != c.Slots[i].Present {
			t.Fatalf("slot %d present = %v, want %v", i, viaSquash.Slots[i].Present, c.Slots[i].Present)
		}
	}
}

func TestSquashRejectsIncompatibleDiffs(t *testing.T) {
	a := containerOf(makeSlot(t, []byte("original"), 1, chunkcodec.None))
	b := containerOf(makeSlot(t, []byte("changed once"), 2, chunkcodec.None))
	wrongB := containerOf(makeSlot(t, []byte("a completely unrelated second state"), 2, chunkcodec.None))
	c := containerOf(makeSlot(t, []byte("changed twice"), 3, chunkcodec.None))

	d1, err := Diff(a, b, chunkcodec.None, 1)
	if err != nil {
		t.Fatalf("Diff(a,b): %v", err)
	}
	d2, err := Diff(wrongB, c, chunkcodec.None, 1)
	if err != nil {
		t.Fatalf("Diff(wrongB,c): %v", err)
	}

	if _, err := Squash(d1, d2, chunkcodec.None, 1); err == nil {
		t.Fatal("expected an IncompatibleSquashError")
	}
}
