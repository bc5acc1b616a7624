// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workerpool runs a slot-indexed batch of independent tasks
// with bounded concurrency, the shape lib/engine needs to map diff,
// patch, revert, and squash over up to 1024 chunk slots without
// spawning 1024 unbounded goroutines.
package workerpool
