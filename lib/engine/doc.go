// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine implements the four operations exposed by the CLI
// by mapping the matching per-chunk operation across every slot of a
// container or diff, each slot scheduled through lib/workerpool.
package engine
