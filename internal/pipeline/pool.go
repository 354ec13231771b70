// internal/pipeline/pool.go
package pipeline

import (
	"context"
	"sync"
)

// outcome pairs one input's result with the error that produced it.
type outcome[O any] struct {
	value O
	err   error
}

// mapConcurrent runs fn over inputs with at most workers goroutines in
// flight. The returned slice is index-aligned with inputs: position i always
// holds input i's outcome, however the goroutines interleave. Results are
// only assembled after every worker has joined.
func mapConcurrent[I, O any](ctx context.Context, workers int, inputs []I, fn func(context.Context, I) (O, error)) []outcome[O] {
	if workers < 1 {
		workers = 1
	}

	results := make([]outcome[O], len(inputs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, input I) {
			defer wg.Done()
			defer func() { <-sem }()
			value, err := fn(ctx, input)
			results[i] = outcome[O]{value: value, err: err}
		}(i, input)
	}

	wg.Wait()
	return results
}
