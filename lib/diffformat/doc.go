// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diffformat serializes and deserializes a region diff: a
// header plus one per-chunk diff entry per slot, in the wire layout
// the engine package reads and writes. It knows nothing about anvil
// containers or chunk payload deltas beyond the Entry/Delta types it
// carries — classifying slots and interpreting deltas is the engine
// package's job.
package diffformat
