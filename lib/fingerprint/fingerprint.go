// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint is a 32-byte BLAKE3 keyed digest of a chunk payload.
type Fingerprint [32]byte

// domainKey separates chunk-payload fingerprints from any other use
// of BLAKE3 keyed hashing that might be added later. The bytes are
// the ASCII domain name, zero-padded to 32.
var domainKey = [32]byte{
	'r', 'e', 'g', 'i', 'o', 'n', '-', 'd', 'i', 'f', 'f', '.',
	'c', 'h', 'u', 'n', 'k', '-', 'p', 'a', 'y', 'l', 'o', 'a', 'd',
}

// Of computes the fingerprint of a decompressed chunk payload.
func Of(data []byte) Fingerprint {
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		// domainKey is a fixed 32-byte array; NewKeyed only fails on
		// wrong key length, so this path is unreachable.
		panic("fingerprint: blake3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var out Fingerprint
	copy(out[:], hasher.Sum(nil))
	return out
}

// String returns the full hex-encoded fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the abbreviated form used in log lines: the fp-
// prefix followed by the first 6 bytes in hex.
func (f Fingerprint) Short() string {
	return "fp-" + hex.EncodeToString(f[:6])
}
