// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunkcodec provides a uniform compress/decompress adapter over
// the compression algorithms a region file (or a diff file) may carry:
// none, zlib, gzip, and LZ4. It is pure — no package-level mutable state
// beyond the stateless, concurrency-safe encoder/decoder handles each
// codec keeps internally.
package chunkcodec
