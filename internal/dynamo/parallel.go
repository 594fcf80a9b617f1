package dynamo

import "sync"

// ParallelFor executes fn over [0, n) split into at most workers contiguous
// chunks. Chunk k always covers the same range for a given n, workers and
// minChunk, so per-chunk state can be prepared before the call.
func ParallelFor(n, workers, minChunk int, fn func(chunk, start, end int)) {
	bounds := Chunks(n, workers, minChunk)
	if len(bounds) <= 1 {
		fn(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(bounds))

	for k, b := range bounds {
		go func(k, s, e int) {
			defer wg.Done()
			fn(k, s, e)
		}(k, b[0], b[1])
	}

	wg.Wait()
}

// Chunks returns the [start, end) ranges ParallelFor will use.
func Chunks(n, workers, minChunk int) [][2]int {
	if minChunk < 1 {
		minChunk = 1
	}
	if workers < 1 || n <= minChunk {
		return [][2]int{{0, n}}
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers
	bounds := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
