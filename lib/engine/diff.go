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

// Diff classifies every slot of oldC against the matching slot of
// newC, serializes the resulting per-chunk entries, and wraps the
// body with the given codec.
func Diff(oldC, newC *anvil.Container, codec chunkcodec.Kind, concurrency int) ([]byte, error) {
	if oldC.SlotCount != newC.SlotCount {
		return nil, &rderrors.CorruptContainerError{Slot: -1, Reason: fmt.Sprintf("old container has %d slots, new has %d", oldC.SlotCount, newC.SlotCount)}
	}

	tasks := make([]func() (diffformat.Entry, error), oldC.SlotCount)
	for i := range tasks {
		i := i
		tasks[i] = func() (diffformat.Entry, error) {
			return classifySlot(i, oldC.Slots[i], newC.Slots[i])
		}
	}

	entries, err := workerpool.Run(concurrency, tasks)
	if err != nil {
		return nil, err
	}

	body := diffformat.Serialize(entries)
	wrapped, err := chunkcodec.Compress(body, codec)
	if err != nil {
		return nil, &rderrors.CodecError{Op: "compress diff body", Err: err}
	}
	return wrapped, nil
}

func classifySlot(idx int, oldSlot, newSlot anvil.Slot) (diffformat.Entry, error) {
	switch {
	case !oldSlot.Present && !newSlot.Present:
		return diffformat.NewUnchanged(), nil

	case !oldSlot.Present && newSlot.Present:
		payload, err := decompressSlot(idx, newSlot)
		if err != nil {
			return diffformat.Entry{}, err
		}
		return diffformat.NewAdded(newSlot.Timestamp, newSlot.Tag, payload), nil

	case oldSlot.Present && !newSlot.Present:
		payload, err := decompressSlot(idx, oldSlot)
		if err != nil {
			return diffformat.Entry{}, err
		}
		return diffformat.NewRemoved(oldSlot.Timestamp, oldSlot.Tag, payload), nil

	default:
		oldPayload, err := decompressSlot(idx, oldSlot)
		if err != nil {
			return diffformat.Entry{}, err
		}
		newPayload, err := decompressSlot(idx, newSlot)
		if err != nil {
			return diffformat.Entry{}, err
		}

		if oldSlot.Timestamp == newSlot.Timestamp && oldSlot.Tag == newSlot.Tag && bytes.Equal(oldPayload, newPayload) {
			logFingerprint(idx, "unchanged-old", oldPayload)
			logFingerprint(idx, "unchanged-new", newPayload)
			return diffformat.NewUnchanged(), nil
		}
		logFingerprint(idx, "modified-old", oldPayload)
		logFingerprint(idx, "modified-new", newPayload)

		delta := chunkdelta.Diff(oldPayload, newPayload)
		return diffformat.NewModified(
			diffformat.Meta{Timestamp: oldSlot.Timestamp, Tag: oldSlot.Tag},
			diffformat.Meta{Timestamp: newSlot.Timestamp, Tag: newSlot.Tag},
			delta,
		), nil
	}
}
