// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes a debug-only content fingerprint for
// chunk payloads, used exclusively in debug log lines (-vv and above) to let an
// operator eyeball whether two payloads the engine treated as
// Unchanged really are identical. Fingerprints are never written to a
// diff file or a container — the wire formats carry no identity
// metadata by design.
package fingerprint
