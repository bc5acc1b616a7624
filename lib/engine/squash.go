// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"fmt"

	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
	"github.com/HairlessVillager/region-diff/lib/chunkdelta"
	"github.com/HairlessVillager/region-diff/lib/diffformat"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
	"github.com/HairlessVillager/region-diff/lib/workerpool"
)

// Squash composes diff1 (A->B) and diff2 (B->C) into a single diff
// (A->C), per slot, using the per-variant composition table: which
// combination of entry kinds is legal, and what the composed entry
// looks like, never needs either container back — only the two diffs'
// own bytes.
func Squash(diff1Bytes, diff2Bytes []byte, codec chunkcodec.Kind, concurrency int) ([]byte, error) {
	entries1, err := decodeDiff(diff1Bytes, codec)
	if err != nil {
		return nil, err
	}
	entries2, err := decodeDiff(diff2Bytes, codec)
	if err != nil {
		return nil, err
	}
	if len(entries1) != len(entries2) {
		return nil, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("squash operands have %d and %d slot entries", len(entries1), len(entries2))}
	}

	tasks := make([]func() (diffformat.Entry, error), len(entries1))
	for i := range tasks {
		i := i
		tasks[i] = func() (diffformat.Entry, error) {
			return squashEntry(i, entries1[i], entries2[i])
		}
	}

	entries3, err := workerpool.Run(concurrency, tasks)
	if err != nil {
		return nil, err
	}

	body := diffformat.Serialize(entries3)
	wrapped, err := chunkcodec.Compress(body, codec)
	if err != nil {
		return nil, &rderrors.CodecError{Op: "compress squashed diff body", Err: err}
	}
	return wrapped, nil
}

// squashEntry implements the per-slot composition table (§4.5): given
// d1: A->B and d2: B->C for one slot, produce the A->C entry, or an
// IncompatibleSquashError if the two entries' implied states of B
// disagree or the combination is nonsensical (e.g. adding a slot that
// is already present).
func squashEntry(idx int, d1, d2 diffformat.Entry) (diffformat.Entry, error) {
	switch d1.Kind {
	case diffformat.Unchanged:
		return d2, nil

	case diffformat.Added:
		switch d2.Kind {
		case diffformat.Unchanged:
			return d1, nil
		case diffformat.Added:
			return diffformat.Entry{}, incompatibleSquash(idx, "cannot add a slot that is already added")
		case diffformat.Removed:
			if d1.Timestamp == d2.Timestamp && d1.Tag == d2.Tag && bytes.Equal(d1.Payload, d2.Payload) {
				return diffformat.NewUnchanged(), nil
			}
			return diffformat.Entry{}, incompatibleSquash(idx, "removed entry's recorded state does not match the earlier added entry")
		case diffformat.Modified:
			if d1.Timestamp != d2.OldMeta.Timestamp || d1.Tag != d2.OldMeta.Tag {
				return diffformat.Entry{}, incompatibleSquash(idx, "modified entry's recorded old state does not match the earlier added entry")
			}
			newPayload, err := chunkdelta.Apply(d1.Payload, d2.Delta)
			if err != nil {
				return diffformat.Entry{}, incompatibleSquash(idx, err.Error())
			}
			return diffformat.NewAdded(d2.NewMeta.Timestamp, d2.NewMeta.Tag, newPayload), nil
		}

	case diffformat.Removed:
		switch d2.Kind {
		case diffformat.Unchanged:
			return d1, nil
		case diffformat.Added:
			return diffformat.NewModified(
				diffformat.Meta{Timestamp: d1.Timestamp, Tag: d1.Tag},
				diffformat.Meta{Timestamp: d2.Timestamp, Tag: d2.Tag},
				chunkdelta.Diff(d1.Payload, d2.Payload),
			), nil
		case diffformat.Removed:
			return diffformat.Entry{}, incompatibleSquash(idx, "cannot remove a slot that is already removed")
		case diffformat.Modified:
			return diffformat.Entry{}, incompatibleSquash(idx, "cannot modify a slot that is already removed")
		}

	case diffformat.Modified:
		switch d2.Kind {
		case diffformat.Unchanged:
			return d1, nil
		case diffformat.Added:
			return diffformat.Entry{}, incompatibleSquash(idx, "cannot add a slot that is already present")
		case diffformat.Removed:
			if d1.NewMeta.Timestamp != d2.Timestamp || d1.NewMeta.Tag != d2.Tag {
				return diffformat.Entry{}, incompatibleSquash(idx, "removed entry's recorded state does not match the earlier modified entry's new state")
			}
			oldPayload, err := chunkdelta.Revert(d2.Payload, d1.Delta)
			if err != nil {
				return diffformat.Entry{}, incompatibleSquash(idx, err.Error())
			}
			return diffformat.NewRemoved(d1.OldMeta.Timestamp, d1.OldMeta.Tag, oldPayload), nil
		case diffformat.Modified:
			if d1.NewMeta.Timestamp != d2.OldMeta.Timestamp || d1.NewMeta.Tag != d2.OldMeta.Tag {
				return diffformat.Entry{}, incompatibleSquash(idx, "modified entry's recorded old state does not match the earlier modified entry's new state")
			}
			composed, err := chunkdelta.Squash(d1.Delta, d2.Delta)
			if err != nil {
				return diffformat.Entry{}, incompatibleSquash(idx, err.Error())
			}
			return diffformat.NewModified(d1.OldMeta, d2.NewMeta, composed), nil
		}
	}

	return diffformat.Entry{}, &rderrors.CorruptDiffError{Reason: fmt.Sprintf("slot %d: unrecognized entry kind combination (%d, %d)", idx, d1.Kind, d2.Kind)}
}
