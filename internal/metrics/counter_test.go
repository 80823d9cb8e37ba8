package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementAndSnapshot(t *testing.T) {
	rc := NewRequestCounter()

	rc.Increment("/predict")
	rc.Increment("/predict")
	rc.Increment("/health")

	snapshot := rc.Snapshot()
	assert.Equal(t, int64(2), snapshot["/predict"])
	assert.Equal(t, int64(1), snapshot["/health"])
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	rc := NewRequestCounter()

	const goroutines = 50
	const perGoroutine = 200

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				rc.Increment("/predict")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), rc.Snapshot()["/predict"])
}

func TestSnapshotIsACopy(t *testing.T) {
	rc := NewRequestCounter()
	rc.Increment("/metrics")

	snapshot := rc.Snapshot()
	snapshot["/metrics"] = 99

	assert.Equal(t, int64(1), rc.Snapshot()["/metrics"])
}
