// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items into one contiguous range per CPU core and runs
// fn for each range concurrently, returning when all ranges are done.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items <= threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ParallelizeWithThresholdErr is ParallelizeWithThreshold for range functions
// that can fail. It returns the error of the lowest failing range.
func ParallelizeWithThresholdErr(items int, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		return fn(0, items)
	}

	var (
		mu       sync.Mutex
		firstErr error
		firstAt  = items
	)
	Parallelize(items, func(start, end int) {
		if err := fn(start, end); err != nil {
			mu.Lock()
			if start < firstAt {
				firstAt, firstErr = start, err
			}
			mu.Unlock()
		}
	})
	return firstErr
}
