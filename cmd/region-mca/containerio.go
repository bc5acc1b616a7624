// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HairlessVillager/region-diff/lib/anvil"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

// containerIO parameterizes the diff/patch/revert/squash/verify
// commands over the three container shapes they can operate on.
type containerIO struct {
	load func(path string) (*anvil.Container, error)
	save func(path string, c *anvil.Container) error
}

func containerIOFor(kind string) (containerIO, error) {
	switch kind {
	case "region-mca", "entities-mca":
		return containerIO{load: loadRegionContainer, save: saveRegionContainer}, nil
	case "region-mcc":
		return containerIO{load: loadMCCContainer, save: saveMCCContainer}, nil
	default:
		return containerIO{}, fmt.Errorf("unknown container kind %q", kind)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &rderrors.IOError{Op: "read " + path, Err: err}
	}
	return data, nil
}

// loadRegionContainer reads a region or entities .mca file. A missing
// file parses as a fully empty container of the right slot count,
// which lets diff treat "region never generated yet" the same as "all
// chunks newly added" against a prior snapshot.
func loadRegionContainer(path string) (*anvil.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return anvil.NewContainer(anvil.RegionSlotCount), nil
		}
		return nil, &rderrors.IOError{Op: "read " + path, Err: err}
	}

	c, err := anvil.ParseRegion(data)
	if err != nil {
		return nil, err
	}

	for i, slot := range c.Slots {
		if !slot.External() {
			continue
		}
		regionX, regionZ, err := regionCoords(path)
		if err != nil {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "slot is external but region coordinates could not be parsed from the filename: " + err.Error()}
		}
		sidecar := sidecarPath(path, regionX, regionZ, i)
		sidecarData, err := readFile(sidecar)
		if err != nil {
			return nil, err
		}
		side, err := anvil.ParseMCC(sidecarData)
		if err != nil {
			return nil, err
		}
		if !side.Slots[0].Present {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: "external slot's sidecar file " + sidecar + " is empty"}
		}
		if err := c.SetExternalData(i, side.Slots[0].Tag, side.Slots[0].Data); err != nil {
			return nil, &rderrors.CorruptContainerError{Slot: i, Reason: err.Error()}
		}
	}
	return c, nil
}

func saveRegionContainer(path string, c *anvil.Container) error {
	data, err := anvil.SerializeRegion(c)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// loadMCCContainer reads a standalone .mcc container. A missing file
// parses as an absent single chunk, the same representation an empty
// file gets.
func loadMCCContainer(path string) (*anvil.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data = nil
		} else {
			return nil, &rderrors.IOError{Op: "read " + path, Err: err}
		}
	}
	return anvil.ParseMCC(data)
}

func saveMCCContainer(path string, c *anvil.Container) error {
	data, err := anvil.SerializeMCC(c)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temp file in path's directory and
// renames it into place, so a crash mid-write never leaves a
// truncated or partially-written file at path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".region-mca-tmp-*")
	if err != nil {
		return &rderrors.IOError{Op: "create temp file in " + dir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &rderrors.IOError{Op: "write " + tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &rderrors.IOError{Op: "close " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &rderrors.IOError{Op: "rename into " + path, Err: err}
	}
	return nil
}
