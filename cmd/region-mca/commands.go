// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
	"github.com/HairlessVillager/region-diff/lib/diffformat"
	"github.com/HairlessVillager/region-diff/lib/engine"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

// options collects the flags every subcommand shares, plus the two
// operation-specific switches (stats, dryRun) that only some of them
// read.
type options struct {
	concurrency int
	codec       chunkcodec.Kind
	stats       bool
	dryRun      bool
}

func runDiff(logger *slog.Logger, kind, oldPath, newPath, outPath string, opts options) error {
	io, err := containerIOFor(kind)
	if err != nil {
		return err
	}
	oldC, err := io.load(oldPath)
	if err != nil {
		return err
	}
	newC, err := io.load(newPath)
	if err != nil {
		return err
	}

	diffBytes, err := engine.Diff(oldC, newC, opts.codec, opts.concurrency)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outPath, diffBytes); err != nil {
		return err
	}

	logger.Info("diff written", "out", outPath, "size", humanize.IBytes(uint64(len(diffBytes))))

	if opts.stats {
		return printStats(diffBytes, opts.codec)
	}
	return nil
}

func runPatch(logger *slog.Logger, kind, oldPath, diffPath, outPath string, opts options) error {
	io, err := containerIOFor(kind)
	if err != nil {
		return err
	}
	oldC, err := io.load(oldPath)
	if err != nil {
		return err
	}
	diffBytes, err := readFile(diffPath)
	if err != nil {
		return err
	}

	newC, err := engine.Patch(oldC, diffBytes, opts.codec, opts.concurrency)
	if err != nil {
		return err
	}

	if opts.dryRun {
		logger.Info("patch would succeed (dry run, nothing written)", "out", outPath)
		return nil
	}
	if err := io.save(outPath, newC); err != nil {
		return err
	}
	logger.Info("patch applied", "out", outPath)
	return nil
}

func runRevert(logger *slog.Logger, kind, newPath, diffPath, outPath string, opts options) error {
	io, err := containerIOFor(kind)
	if err != nil {
		return err
	}
	newC, err := io.load(newPath)
	if err != nil {
		return err
	}
	diffBytes, err := readFile(diffPath)
	if err != nil {
		return err
	}

	oldC, err := engine.Revert(newC, diffBytes, opts.codec, opts.concurrency)
	if err != nil {
		return err
	}

	if opts.dryRun {
		logger.Info("revert would succeed (dry run, nothing written)", "out", outPath)
		return nil
	}
	if err := io.save(outPath, oldC); err != nil {
		return err
	}
	logger.Info("revert applied", "out", outPath)
	return nil
}

func runSquash(logger *slog.Logger, diff1Path, diff2Path, outPath string, opts options) error {
	diff1Bytes, err := readFile(diff1Path)
	if err != nil {
		return err
	}
	diff2Bytes, err := readFile(diff2Path)
	if err != nil {
		return err
	}

	squashed, err := engine.Squash(diff1Bytes, diff2Bytes, opts.codec, opts.concurrency)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outPath, squashed); err != nil {
		return err
	}

	logger.Info("squash written", "out", outPath, "size", humanize.IBytes(uint64(len(squashed))))
	return nil
}

// runVerify parses a container and reports corruption without
// performing a diff — a standalone sanity check over the same
// lib/anvil parse path the other four verbs use.
func runVerify(logger *slog.Logger, kind, path string, opts options) error {
	io, err := containerIOFor(kind)
	if err != nil {
		return err
	}
	c, err := io.load(path)
	if err != nil {
		return err
	}

	present := 0
	for _, slot := range c.Slots {
		if slot.Present {
			present++
		}
	}

	logger.Info("verify ok", "file", path, "slots", c.SlotCount, "present", present)
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

type slotStat struct {
	Unchanged int `json:"unchanged"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
}

// printStats re-decodes a diff's body purely to produce the -j/--stats
// summary; it never gets wired into the patch/revert path, which only
// ever needs the entries once.
func printStats(diffBytes []byte, codec chunkcodec.Kind) error {
	body, err := chunkcodec.Decompress(diffBytes, codec)
	if err != nil {
		return &rderrors.CodecError{Op: "decompress diff body for stats", Err: err}
	}
	entries, err := diffformat.Deserialize(body)
	if err != nil {
		return err
	}

	var stat slotStat
	for _, e := range entries {
		switch e.Kind {
		case diffformat.Unchanged:
			stat.Unchanged++
		case diffformat.Added:
			stat.Added++
		case diffformat.Removed:
			stat.Removed++
		case diffformat.Modified:
			stat.Modified++
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stat)
}
