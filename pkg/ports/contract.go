package ports

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunIDGeneratorContract runs a suite of tests to verify that an IDGenerator
// implementation adheres to the defined interface contract.
func RunIDGeneratorContract(t *testing.T, gen IDGenerator) {
	t.Run("Non-Empty", func(t *testing.T) {
		assert.NotEmpty(t, gen.NewID())
	})

	t.Run("Unique Under Bulk Generation", func(t *testing.T) {
		const n = 5000
		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			id := gen.NewID()
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %q after %d calls", id, i)
			seen[id] = struct{}{}
		}
	})

	t.Run("Unique Under Concurrency", func(t *testing.T) {
		const workers, perWorker = 8, 500
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, workers*perWorker)
			wg   sync.WaitGroup
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					id := gen.NewID()
					mu.Lock()
					seen[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, workers*perWorker)
	})
}
