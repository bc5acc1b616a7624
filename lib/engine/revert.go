// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"fmt"

	"github.com/HairlessVillager/region-diff/lib/anvil"
	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
	"github.com/HairlessVillager/region-diff/lib/chunkdelta"
	"github.com/HairlessVillager/region-diff/lib/diffformat"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
	"github.com/HairlessVillager/region-diff/lib/workerpool"
)

// Revert applies diffBytes (produced by Diff) to newC in reverse,
// reconstructing the old container.
func Revert(newC *anvil.Container, diffBytes []byte, codec chunkcodec.Kind, concurrency int) (*anvil.Container, error) {
	entries, err := decodeDiff(diffBytes, codec)
	if err != nil {
		return nil, err
	}
	if len(entries) != newC.SlotCount {
		return nil, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("diff has %d slot entries, container has %d slots", len(entries), newC.SlotCount)}
	}

	tasks := make([]func() (anvil.Slot, error), newC.SlotCount)
	for i := range tasks {
		i := i
		tasks[i] = func() (anvil.Slot, error) {
			return revertEntry(i, newC.Slots[i], entries[i])
		}
	}

	slots, err := workerpool.Run(concurrency, tasks)
	if err != nil {
		return nil, err
	}
	return &anvil.Container{SlotCount: newC.SlotCount, Slots: slots}, nil
}

func revertEntry(idx int, new anvil.Slot, entry diffformat.Entry) (anvil.Slot, error) {
	switch entry.Kind {
	case diffformat.Unchanged:
		return new, nil

	case diffformat.Added:
		if !new.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is absent but the diff records it as added")
		}
		if new.Timestamp != entry.Timestamp || new.Tag != entry.Tag {
			return anvil.Slot{}, incompatiblePatch(idx, "slot metadata does not match the diff's recorded added state")
		}
		newPayload, err := decompressSlot(idx, new)
		if err != nil {
			return anvil.Slot{}, err
		}
		if !bytes.Equal(newPayload, entry.Payload) {
			return anvil.Slot{}, incompatiblePatch(idx, "slot payload does not match the diff's recorded added state")
		}
		return anvil.Slot{}, nil

	case diffformat.Removed:
		if new.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is present but the diff records it as removed")
		}
		compressed, err := compressForTag(idx, entry.Payload, entry.Tag)
		if err != nil {
			return anvil.Slot{}, err
		}
		return anvil.Slot{Present: true, Timestamp: entry.Timestamp, Tag: entry.Tag, Data: compressed}, nil

	case diffformat.Modified:
		if !new.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is absent but the diff records it as modified")
		}
		if new.Timestamp != entry.NewMeta.Timestamp || new.Tag != entry.NewMeta.Tag {
			return anvil.Slot{}, incompatiblePatch(idx, "slot metadata does not match the diff's recorded new state")
		}
		newPayload, err := decompressSlot(idx, new)
		if err != nil {
			return anvil.Slot{}, err
		}
		oldPayload, err := chunkdelta.Revert(newPayload, entry.Delta)
		if err != nil {
			return anvil.Slot{}, incompatiblePatch(idx, err.Error())
		}
		compressed, err := compressForTag(idx, oldPayload, entry.OldMeta.Tag)
		if err != nil {
			return anvil.Slot{}, err
		}
		return anvil.Slot{Present: true, Timestamp: entry.OldMeta.Timestamp, Tag: entry.OldMeta.Tag, Data: compressed}, nil

	default:
		return anvil.Slot{}, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("slot %d: unrecognized entry kind %d", idx, entry.Kind)}
	}
}
