// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/HairlessVillager/region-diff/lib/rderrors"
)

// debugLogPath is where -vvv tees log records in addition to stderr.
const debugLogPath = "debug.log"

// setupLogger maps the -v/-vv/-vvv repeat count to a log level: no
// flag suppresses structured logging entirely (none), -v enables info
// lines (including the one-line completion summary every operation
// emits), -vv enables debug (including fingerprint lines), and -vvv
// additionally tees everything to debug.log as well as stderr. The
// returned close func must be called before the process exits.
func setupLogger(verbosity int) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch {
	case verbosity <= 0:
		level = slog.LevelError + 4 // none: above every level this program logs at
	case verbosity == 1:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}

	writer := io.Writer(os.Stderr)
	closeFn := func() error { return nil }

	if verbosity >= 3 {
		file, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, &rderrors.IOError{Op: "open " + debugLogPath, Err: err}
		}
		writer = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger) // lib/engine logs chunk fingerprints through the default logger
	return logger, closeFn, nil
}
