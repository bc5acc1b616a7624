// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// region-mca computes, applies, inverts, and composes binary diffs
// between Minecraft Java Edition region containers (region/entities
// .mca files and their .mcc sidecars).
//
// Usage:
//
//	region-mca <container-kind> diff    <old> <new> <out>  [flags]
//	region-mca <container-kind> patch   <old> <diff> <out> [flags]
//	region-mca <container-kind> revert  <new> <diff> <out> [flags]
//	region-mca <container-kind> squash  <diff1> <diff2> <out> [flags]
//	region-mca <container-kind> verify  <file> [flags]
//	region-mca help
//
// <container-kind> is one of region-mca, entities-mca, region-mcc.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/HairlessVillager/region-diff/lib/chunkcodec"
	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "region-mca: %v\n", err)
		os.Exit(rderrors.ExitCode(err))
	}
}

func run() error {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "--help" || os.Args[1] == "-h" {
		printUsage()
		return nil
	}
	if len(os.Args) < 3 {
		printUsage()
		return fmt.Errorf("missing operation")
	}

	kind := os.Args[1]
	operation := os.Args[2]

	flagSet := pflag.NewFlagSet("region-mca "+kind+" "+operation, pflag.ContinueOnError)
	concurrency := flagSet.IntP("workers", "t", 8, "number of worker goroutines")
	codecName := flagSet.StringP("codec", "c", "zlib", "payload compression: none|zlib|gzip|lz4")
	var verbosity int
	flagSet.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	stats := flagSet.BoolP("stats", "j", false, "print a JSON per-kind slot count summary (diff only)")
	dryRun := flagSet.Bool("dry-run", false, "run the operation but skip writing the result (patch, revert)")

	if err := flagSet.Parse(os.Args[3:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage()
			return nil
		}
		return err
	}

	codec, err := chunkcodec.ParseKind(*codecName)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(verbosity)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := options{
		concurrency: *concurrency,
		codec:       codec,
		stats:       *stats,
		dryRun:      *dryRun,
	}

	positional := flagSet.Args()

	switch operation {
	case "diff":
		if len(positional) != 3 {
			return fmt.Errorf("diff requires <old> <new> <out>, got %d arguments", len(positional))
		}
		return runDiff(logger, kind, positional[0], positional[1], positional[2], opts)

	case "patch":
		if len(positional) != 3 {
			return fmt.Errorf("patch requires <old> <diff> <out>, got %d arguments", len(positional))
		}
		return runPatch(logger, kind, positional[0], positional[1], positional[2], opts)

	case "revert":
		if len(positional) != 3 {
			return fmt.Errorf("revert requires <new> <diff> <out>, got %d arguments", len(positional))
		}
		return runRevert(logger, kind, positional[0], positional[1], positional[2], opts)

	case "squash":
		if len(positional) != 3 {
			return fmt.Errorf("squash requires <diff1> <diff2> <out>, got %d arguments", len(positional))
		}
		return runSquash(logger, positional[0], positional[1], positional[2], opts)

	case "verify":
		if len(positional) != 1 {
			return fmt.Errorf("verify requires <file>, got %d arguments", len(positional))
		}
		return runVerify(logger, kind, positional[0], opts)

	default:
		printUsage()
		return fmt.Errorf("unknown operation %q", operation)
	}
}

func printUsage() {
	fmt.Print(`region-mca - diff, patch, revert, and squash Minecraft region containers

USAGE
    region-mca <container-kind> <operation> [args...] [flags]

CONTAINER KINDS
    region-mca      region .mca file (terrain chunks)
    entities-mca    entities .mca file
    region-mcc      a single standalone .mcc sidecar

OPERATIONS
    diff    <old> <new> <out>        compute a diff from old to new
    patch   <old> <diff> <out>       apply a diff forward
    revert  <new> <diff> <out>       apply a diff in reverse
    squash  <diff1> <diff2> <out>    compose two sequential diffs into one
    verify  <file>                   parse a container and report corruption

FLAGS
    -t, --workers int      worker goroutines (default 8)
    -c, --codec string     diff payload compression: none|zlib|gzip|lz4 (default zlib)
    -v, -vv, -vvv          logging: info / debug / debug+debug.log (default none)
    -j, --stats            print a JSON slot-kind summary (diff only)
        --dry-run          run patch/revert without writing the result

EXIT CODES
    0  success
    1  generic runtime error
    2  I/O error
    3  corrupt or unsupported container/diff
    4  diff does not apply to the given container
`)
}
