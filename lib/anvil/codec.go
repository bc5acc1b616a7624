// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anvil

import (
	"fmt"

	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
)

// KindForTag maps an on-disk anvil compression tag to the chunkcodec
// Kind needed to decompress it. TagExternal has no codec of its own —
// the caller must resolve the sidecar and use its tag instead.
func KindForTag(tag byte) (chunkcodec.Kind, error) {
	switch tag {
	case TagGzip:
		return chunkcodec.Gzip, nil
	case TagZlib:
		return chunkcodec.Zlib, nil
	case TagUncompressed:
		return chunkcodec.None, nil
	case TagLZ4:
		return chunkcodec.LZ4, nil
	default:
		return 0, fmt.Errorf("anvil: tag %d has no associated codec", tag)
	}
}

// TagForKind is the inverse of KindForTag, used when recompressing a
// chunk for output with a given codec kind.
func TagForKind(kind chunkcodec.Kind) (byte, error) {
	switch kind {
	case chunkcodec.Gzip:
		return TagGzip, nil
	case chunkcodec.Zlib:
		return TagZlib, nil
	case chunkcodec.None:
		return TagUncompressed, nil
	case chunkcodec.LZ4:
		return TagLZ4, nil
	default:
		return 0, fmt.Errorf("anvil: codec kind %d has no associated tag", kind)
	}
}

// Decompress decompresses a slot's raw payload using its recorded tag.
// The slot must not be external (resolve the sidecar first).
func Decompress(slot Slot) ([]byte, error) {
	kind, err := KindForTag(slot.Tag)
	if err != nil {
		return nil, err
	}
	return chunkcodec.Decompress(slot.Data, kind)
}

// Compress compresses data for storage in a slot tagged with kind,
// returning the tag and the compressed bytes to place in Slot.Data.
func Compress(data []byte, kind chunkcodec.Kind) (tag byte, compressed []byte, err error) {
	tag, err = TagForKind(kind)
	if err != nil {
		return 0, nil, err
	}
	compressed, err = chunkcodec.Compress(data, kind)
	if err != nil {
		return 0, nil, err
	}
	return tag, compressed, nil
}
