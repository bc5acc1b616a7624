// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HairlessVillager/region-diff/lib/anvil"
	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
	"github.com/HairlessVillager/region-diff/lib/fingerprint"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

func decompressSlot(idx int, slot anvil.Slot) ([]byte, error) {
	payload, err := anvil.Decompress(slot)
	if err != nil {
		return nil, &rderrors.CodecError{Op: fmt.Sprintf("decompress slot %d", idx), Err: err}
	}
	return payload, nil
}

func compressForTag(idx int, payload []byte, tag byte) ([]byte, error) {
	kind, err := anvil.KindForTag(tag)
	if err != nil {
		return nil, &rderrors.CodecError{Op: fmt.Sprintf("compress slot %d", idx), Err: err}
	}
	compressed, err := chunkcodec.Compress(payload, kind)
	if err != nil {
		return nil, &rderrors.CodecError{Op: fmt.Sprintf("compress slot %d", idx), Err: err}
	}
	return compressed, nil
}

func incompatiblePatch(slot int, reason string) error {
	return &rderrors.IncompatiblePatchError{Slot: slot, Reason: reason}
}

func incompatibleSquash(slot int, reason string) error {
	return &rderrors.IncompatibleSquashError{Slot: slot, Reason: reason}
}

// logFingerprint emits a debug line (-vv and above) identifying which chunk
// payload a slot carried, so an operator can eyeball whether two
// payloads the engine classified as equal (or unequal) really are —
// fingerprints never appear in a diff file itself. The fingerprint.Of
// call is skipped entirely unless debug logging is enabled, since it
// hashes the full payload.
func logFingerprint(idx int, which string, payload []byte) {
	logger := slog.Default()
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	logger.Debug("chunk payload fingerprint", "slot", idx, "which", which, "fingerprint", fingerprint.Of(payload).Short())
}
