// Copyright 2017, Kerby Shedden and the Muscato contributors.
// Copyright 2026, the sircel contributors.

// Package workerpool is the one bounded-worker-pool implementation
// shared by every parallel-map stage named in spec.md section 5:
// k-mer extraction, subgraph-build-plus-enumeration, and read
// assignment. It generalizes the semaphore-channel pattern the
// teacher used in muscato_screen.go (a "limit" channel bounding
// in-flight goroutines, a harvest goroutine draining results) into a
// single reusable, ordered parallel map.
package workerpool

import "sync"

// Map runs fn over each item with at most threads goroutines in
// flight at once, and returns results in input order. Workers receive
// only their own item and return an owned result; no shared mutable
// state is exposed to them, per spec.md section 5. The first error
// returned by any fn call is propagated after every in-flight worker
// has finished (a worker failure is fatal and the engine must not act
// on a partial result set).
func Map[T any, R any](threads int, items []T, fn func(T) (R, error)) ([]R, error) {
	if threads < 1 {
		threads = 1
	}
	n := len(items)
	out := make([]R, n)
	errs := make([]error, n)

	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	wg.Add(n)
	for i, item := range items {
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := fn(item)
			out[i] = r
			errs[i] = err
		}(i, item)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return out, nil
}
