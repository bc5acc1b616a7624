// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package anvil parses and serializes Minecraft's region-file container
// format: the sector-aligned layout used by region/*.mca and
// entities/*.mca, plus the flat single-chunk layout used by *.mcc
// sidecars. The container is treated purely as a fixed number of
// independently addressable compressed-payload slots — this package
// never interprets the NBT bytes a slot carries.
package anvil
