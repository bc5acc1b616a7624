// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunCollectsIndexedResults(t *testing.T) {
	tasks := make([]func() (int, error), 20)
	for i := range tasks {
		i := i
		tasks[i] = func() (int, error) { return i * i, nil }
	}

	results, err := Run(4, tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, got := range results {
		if got != i*i {
			t.Fatalf("results[%d] = %d, want %d", i, got, i*i)
		}
	}
}

func TestRunReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	tasks := []func() (int, error){
		func() (int, error) { return 1, nil },
		func() (int, error) { return 0, boom },
		func() (int, error) { return 3, nil },
	}

	_, err := Run(2, tasks)
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
}

func TestRunRespectsConcurrencyBound(t *testing.T) {
	const limit = 3
	var current, max atomic.Int32

	tasks := make([]func() (struct{}, error), 30)
	for i := range tasks {
		tasks[i] = func() (struct{}, error) {
			n := current.Add(1)
			for {
				old := max.Load()
				if n <= old || max.CompareAndSwap(old, n) {
					break
				}
			}
			defer current.Add(-1)
			return struct{}{}, nil
		}
	}

	if _, err := Run(limit, tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if max.Load() > limit {
		t.Fatalf("observed %d concurrent tasks, want at most %d", max.Load(), limit)
	}
}

func TestRunDefaultsConcurrencyWhenZero(t *testing.T) {
	tasks := []func() (int, error){
		func() (int, error) { return 1, nil },
	}
	results, err := Run(0, tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0] != 1 {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestRunEmptyTasks(t *testing.T) {
	results, err := Run[int](4, nil)
	if err != nil || results != nil {
		t.Fatalf("Run(nil) = (%v, %v), want (nil, nil)", results, err)
	}
}
