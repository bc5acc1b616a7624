// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import "testing"

func TestOfIsDeterministic(t *testing.T) {
	data := []byte("some chunk payload bytes")
	if Of(data) != Of(append([]byte{}, data...)) {
		t.Fatal("Of produced different fingerprints for equal byte slices")
	}
}

func TestOfDistinguishesInputs(t *testing.T) {
	if Of([]byte("alpha")) == Of([]byte("beta")) {
		t.Fatal("Of produced the same fingerprint for different inputs")
	}
}

func TestShortIsPrefixOfString(t *testing.T) {
	f := Of([]byte("chunk"))
	full := f.String()
	short := f.Short()
	if len(short) != len("fp-")+12 {
		t.Fatalf("Short() = %q, want fp- plus 12 hex chars", short)
	}
	if short[len("fp-"):] != full[:12] {
		t.Fatalf("Short() = %q, does not match prefix of String() = %q", short, full)
	}
}
