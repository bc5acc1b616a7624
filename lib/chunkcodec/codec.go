// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunkcodec

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// Kind identifies a compression algorithm recognized by this adapter.
// Numeric values are internal to this package — callers that need the
// anvil on-disk compression tag numbering (§4.2) go through
// lib/anvil's own tag constants instead.
type Kind uint8

const (
	None Kind = iota
	Zlib
	Gzip
	LZ4
)

// String returns the lowercase name used on the CLI (-c flag) and in
// log output.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Zlib:
		return "zlib"
	case Gzip:
		return "gzip"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseKind parses a -c flag value into a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "none":
		return None, nil
	case "zlib":
		return Zlib, nil
	case "gzip":
		return Gzip, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("chunkcodec: unknown codec kind %q", name)
	}
}

// Compress compresses data with the given codec. Within one Kind the
// output is deterministic given deterministic input, so callers can
// compare diff-file bytes across runs.
func Compress(data []byte, kind Kind) ([]byte, error) {
	switch kind {
	case None:
		return data, nil
	case Zlib:
		return compressZlib(data)
	case Gzip:
		return compressGzip(data)
	case LZ4:
		return compressLZ4(data)
	default:
		return nil, fmt.Errorf("chunkcodec: unsupported kind %d", kind)
	}
}

// Decompress reverses Compress. Decompress(Compress(x, k), k) == x for
// every recognized Kind.
func Decompress(data []byte, kind Kind) ([]byte, error) {
	switch kind {
	case None:
		return data, nil
	case Zlib:
		return decompressZlib(data)
	case Gzip:
		return decompressGzip(data)
	case LZ4:
		return decompressLZ4(data)
	default:
		return nil, fmt.Errorf("chunkcodec: unsupported kind %d", kind)
	}
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("chunkcodec: zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("chunkcodec: zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: zlib decompress: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: zlib decompress: %w", err)
	}
	return out, nil
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	// Zero the mtime so identical input always produces identical
	// compressed output (the gzip header otherwise carries a
	// timestamp, which would make diff-file bytes non-reproducible
	// across runs).
	w.Header.ModTime = time.Time{}
	w.Header.OS = 255 // "unknown", avoids leaking the build platform
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("chunkcodec: gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("chunkcodec: gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: gzip decompress: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: gzip decompress: %w", err)
	}
	return out, nil
}

// compressLZ4 uses block-mode LZ4 (not the frame format): the
// uncompressed size is carried in the small envelope described below,
// so there is no need for the frame format's self-describing
// size/checksum overhead.
func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)

	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: lz4 compress: %w", err)
	}
	if n == 0 {
		// CompressBlock returns 0 when the input does not compress
		// (e.g. already-compressed NBT). Store a length-prefixed raw
		// copy so Decompress can still tell original size apart from
		// compressed size.
		return encodeLZ4Raw(data), nil
	}
	return encodeLZ4Compressed(dst[:n], len(data)), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	uncompressedSize, rawFlag, payload, err := decodeLZ4Header(data)
	if err != nil {
		return nil, err
	}
	if rawFlag {
		return payload, nil
	}

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(payload, dst)
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: lz4 decompress: %w", err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("chunkcodec: lz4 decompress: got %d bytes, want %d", n, uncompressedSize)
	}
	return dst, nil
}

// LZ4 block-mode data is not self-describing (no size, no flag for
// "stored uncompressed"), so this adapter prefixes it with a tiny
// envelope: a 1-byte flag (0 = LZ4 block, 1 = stored raw) followed by
// a 4-byte big-endian uncompressed size, followed by the payload.

func encodeLZ4Compressed(block []byte, uncompressedSize int) []byte {
	out := make([]byte, 5+len(block))
	out[0] = 0
	putUint32(out[1:5], uint32(uncompressedSize))
	copy(out[5:], block)
	return out
}

func encodeLZ4Raw(data []byte) []byte {
	out := make([]byte, 5+len(data))
	out[0] = 1
	putUint32(out[1:5], uint32(len(data)))
	copy(out[5:], data)
	return out
}

func decodeLZ4Header(data []byte) (uncompressedSize int, raw bool, payload []byte, err error) {
	if len(data) < 5 {
		return 0, false, nil, fmt.Errorf("chunkcodec: lz4 envelope truncated (%d bytes)", len(data))
	}
	flag := data[0]
	size := getUint32(data[1:5])
	return int(size), flag == 1, data[5:], nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
