// internal/pipeline/pool_test.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapConcurrentPreservesOrder(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}

	results := mapConcurrent(context.Background(), 8, inputs, func(ctx context.Context, n int) (string, error) {
		// Reverse completion order relative to input order.
		time.Sleep(time.Duration(50-n) * time.Millisecond / 10)
		return fmt.Sprintf("r%d", n), nil
	})

	require.Len(t, results, 50)
	for i, r := range results {
		assert.NoError(t, r.err)
		assert.Equal(t, fmt.Sprintf("r%d", i), r.value)
	}
}

func TestMapConcurrentBoundsWorkers(t *testing.T) {
	const workers = 3
	var inFlight, peak int64
	var mu sync.Mutex

	inputs := make([]int, 20)
	mapConcurrent(context.Background(), workers, inputs, func(ctx context.Context, n int) (struct{}, error) {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak, int64(workers))
}

func TestMapConcurrentErrorsStayIsolated(t *testing.T) {
	boom := errors.New("boom")
	inputs := []int{0, 1, 2, 3}

	results := mapConcurrent(context.Background(), 2, inputs, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})

	assert.NoError(t, results[0].err)
	assert.NoError(t, results[1].err)
	assert.ErrorIs(t, results[2].err, boom)
	assert.NoError(t, results[3].err)
	assert.Equal(t, 30, results[3].value)
}

func TestMapConcurrentZeroWorkers(t *testing.T) {
	results := mapConcurrent(context.Background(), 0, []int{1, 2}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].value)
	assert.Equal(t, 2, results[1].value)
}
