// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "testing"

func TestRegionCoords(t *testing.T) {
	cases := []struct {
		path    string
		wantX   int
		wantZ   int
		wantErr bool
	}{
		{"r.0.0.mca", 0, 0, false},
		{"/world/region/r.-1.2.mca", -1, 2, false},
		{"r.12.-34.mca", 12, -34, false},
		{"entities.mca", 0, 0, true},
		{"r.1.mca", 0, 0, true},
	}
	for _, c := range cases {
		x, z, err := regionCoords(c.path)
		if c.wantErr {
			if err == nil {
				t.Errorf("regionCoords(%q): expected an error", c.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("regionCoords(%q): %v", c.path, err)
			continue
		}
		if x != c.wantX || z != c.wantZ {
			t.Errorf("regionCoords(%q) = (%d, %d), want (%d, %d)", c.path, x, z, c.wantX, c.wantZ)
		}
	}
}

func TestSidecarPath(t *testing.T) {
	cases := []struct {
		mainPath         string
		regionX, regionZ int
		slot             int
		want             string
	}{
		// slot = cz*32+cx
		{"/world/region/r.0.0.mca", 0, 0, 0, "/world/region/c.0.0.mcc"},
		{"/world/region/r.0.0.mca", 0, 0, 33, "/world/region/c.1.1.mcc"},
		{"/world/region/r.-1.2.mca", -1, 2, 31, "/world/region/c.-1.64.mcc"},
	}
	for _, c := range cases {
		got := sidecarPath(c.mainPath, c.regionX, c.regionZ, c.slot)
		if got != c.want {
			t.Errorf("sidecarPath(%q, %d, %d, %d) = %q, want %q", c.mainPath, c.regionX, c.regionZ, c.slot, got, c.want)
		}
	}
}
