package metrics

import "sync"

// RequestCounter tracks how many requests each route path has served.
// It lives for the whole process and is never reset or persisted.
type RequestCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{
		counts: make(map[string]int64),
	}
}

func (rc *RequestCounter) Increment(path string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.counts[path]++
}

// Snapshot returns a copy of the current counts.
func (rc *RequestCounter) Snapshot() map[string]int64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	snapshot := make(map[string]int64, len(rc.counts))
	for path, count := range rc.counts {
		snapshot[path] = count
	}
	return snapshot
}
