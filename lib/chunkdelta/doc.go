// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunkdelta computes and applies a reversible, composable
// delta between two decompressed chunk payloads. A Delta is a small
// ordered list of byte spans where the two payloads differ; every
// byte outside those spans is implicitly identical, so both Apply and
// Revert are single linear passes, and Squash can compose two deltas
// without ever needing the (potentially large) intermediate payload.
package chunkdelta
