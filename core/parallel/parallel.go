// Package parallel splits index ranges across worker goroutines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// Parallelize divides items into contiguous ranges, one per CPU core, and runs
// fn on each range concurrently.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker count.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items
	}
	if workers == 1 {
		fn(0, items)
		return
	}

	chunkSize := (items + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := min(start+chunkSize, items)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items is at or below threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ParallelizeErr is Parallelize for range functions that can fail or panic.
// The first error by range order is returned; panics become PanicError.
func ParallelizeErr(items int, threshold int, fn func(start, end int) error) error {
	var (
		mu    sync.Mutex
		first error
		at    = items
	)
	ParallelizeWithThreshold(items, threshold, func(start, end int) {
		err := errors.SafeExecute("parallel range", func() error { return fn(start, end) })
		if err == nil {
			return
		}
		mu.Lock()
		if start < at {
			first, at = err, start
		}
		mu.Unlock()
	})
	return first
}
