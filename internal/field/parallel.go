package field

import (
	"runtime"
	"sync"
)

// span is a half-open index range [lo, hi).
type span struct{ lo, hi int }

// split cuts [0, n) into at most parts contiguous spans of at least
// minChunk indices each. The last span absorbs any remainder.
func split(n, minChunk, parts int) []span {
	if n <= 0 {
		return nil
	}
	minChunk = max(minChunk, 1)
	parts = max(min(parts, n/minChunk), 1)
	size := (n + parts - 1) / parts

	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo, min(lo+size, n)})
	}
	return spans
}

// ParallelFor runs fn over [0, n) in contiguous spans, one goroutine per
// span. Particles are independent within a frame, so the result matches a
// single pass. Small ranges stay on the calling goroutine.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	spans := split(n, minChunk, runtime.GOMAXPROCS(0))
	if len(spans) <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(spans) - 1)
	for _, s := range spans[1:] {
		go func() {
			defer wg.Done()
			fn(s.lo, s.hi)
		}()
	}
	fn(spans[0].lo, spans[0].hi)
	wg.Wait()
}
