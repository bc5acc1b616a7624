// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// regionFilenamePattern matches the anvil region/entities filename
// convention "r.<x>.<z>.mca", the basename every .mcc sidecar in the
// same directory is addressed relative to.
var regionFilenamePattern = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// regionCoords parses the region coordinates out of a region/entities
// file path's basename.
func regionCoords(path string) (x, z int, err error) {
	match := regionFilenamePattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return 0, 0, fmt.Errorf("filename %q does not match the r.<x>.<z>.mca convention", filepath.Base(path))
	}
	x, err = strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, err
	}
	z, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, err
	}
	return x, z, nil
}

// sidecarPath returns the .mcc sidecar path for the chunk at the
// given slot index (i = cz*32+cx) of the region at (regionX, regionZ),
// following Minecraft's own convention of naming sidecars by the
// chunk's absolute (not region-relative) coordinates, in the same
// directory as the region file itself.
func sidecarPath(mainPath string, regionX, regionZ, slot int) string {
	cx := slot % 32
	cz := slot / 32
	globalX := regionX*32 + cx
	globalZ := regionZ*32 + cz
	name := fmt.Sprintf("c.%d.%d.mcc", globalX, globalZ)
	return filepath.Join(filepath.Dir(mainPath), name)
}
