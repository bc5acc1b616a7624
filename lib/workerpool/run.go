// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"sync"
	"sync/atomic"
)

// DefaultConcurrency is the worker count lib/engine falls back to when
// the CLI's -t flag is unset or zero.
const DefaultConcurrency = 8

// Run executes tasks with at most concurrency turns held at once,
// collecting each task's result at its own index in the returned
// slice. The first task to return an error aborts the batch: no
// further tasks are dispatched (those already running are allowed to
// finish), and that error is returned. A nil task slice runs nothing
// and returns immediately.
func Run[T any](concurrency int, tasks []func() (T, error)) ([]T, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	pool, err := New(concurrency)
	if err != nil {
		return nil, err
	}

	results := make([]T, len(tasks))
	var mu sync.Mutex
	var firstErr error
	var cancelled atomic.Bool

	for i, task := range tasks {
		if cancelled.Load() {
			break
		}
		pool.Take()
		go func(i int, task func() (T, error)) {
			defer pool.Give()
			if cancelled.Load() {
				return
			}
			result, err := task()
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancelled.Store(true)
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i, task)
	}
	pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
