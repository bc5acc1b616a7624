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

// Patch applies diffBytes (produced by Diff) to oldC, reconstructing
// the new container.
func Patch(oldC *anvil.Container, diffBytes []byte, codec chunkcodec.Kind, concurrency int) (*anvil.Container, error) {
	entries, err := decodeDiff(diffBytes, codec)
	if err != nil {
		return nil, err
	}
	if len(entries) != oldC.SlotCount {
		return nil, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("diff has %d slot entries, container has %d slots", len(entries), oldC.SlotCount)}
	}

	tasks := make([]func() (anvil.Slot, error), oldC.SlotCount)
	for i := range tasks {
		i := i
		tasks[i] = func() (anvil.Slot, error) {
			return applyEntry(i, oldC.Slots[i], entries[i])
		}
	}

	slots, err := workerpool.Run(concurrency, tasks)
	if err != nil {
		return nil, err
	}
	return &anvil.Container{SlotCount: oldC.SlotCount, Slots: slots}, nil
}

func applyEntry(idx int, old anvil.Slot, entry diffformat.Entry) (anvil.Slot, error) {
	switch entry.Kind {
	case diffformat.Unchanged:
		return old, nil

	case diffformat.Added:
		if old.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is present but the diff records it as added")
		}
		compressed, err := compressForTag(idx, entry.Payload, entry.Tag)
		if err != nil {
			return anvil.Slot{}, err
		}
		return anvil.Slot{Present: true, Timestamp: entry.Timestamp, Tag: entry.Tag, Data: compressed}, nil

	case diffformat.Removed:
		if !old.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is absent but the diff records it as removed")
		}
		if old.Timestamp != entry.Timestamp || old.Tag != entry.Tag {
			return anvil.Slot{}, incompatiblePatch(idx, "slot metadata does not match the diff's recorded removed state")
		}
		oldPayload, err := decompressSlot(idx, old)
		if err != nil {
			return anvil.Slot{}, err
		}
		if !bytes.Equal(oldPayload, entry.Payload) {
			return anvil.Slot{}, incompatiblePatch(idx, "slot payload does not match the diff's recorded removed state")
		}
		return anvil.Slot{}, nil

	case diffformat.Modified:
		if !old.Present {
			return anvil.Slot{}, incompatiblePatch(idx, "slot is absent but the diff records it as modified")
		}
		if old.Timestamp != entry.OldMeta.Timestamp || old.Tag != entry.OldMeta.Tag {
			return anvil.Slot{}, incompatiblePatch(idx, "slot metadata does not match the diff's recorded old state")
		}
		oldPayload, err := decompressSlot(idx, old)
		if err != nil {
			return anvil.Slot{}, err
		}
		newPayload, err := chunkdelta.Apply(oldPayload, entry.Delta)
		if err != nil {
			return anvil.Slot{}, incompatiblePatch(idx, err.Error())
		}
		compressed, err := compressForTag(idx, newPayload, entry.NewMeta.Tag)
		if err != nil {
			return anvil.Slot{}, err
		}
		return anvil.Slot{Present: true, Timestamp: entry.NewMeta.Timestamp, Tag: entry.NewMeta.Tag, Data: compressed}, nil

	default:
		return anvil.Slot{}, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("slot %d: unrecognized entry kind %d", idx, entry.Kind)}
	}
}

func decodeDiff(diffBytes []byte, codec chunkcodec.Kind) ([]diffformat.Entry, error) {
	body, err := chunkcodec.Decompress(diffBytes, codec)
	if err != nil {
		return nil, &rderrors.CodecError{Op: "decompress diff body", Err: err}
	}
	return diffformat.Deserialize(body)
}
