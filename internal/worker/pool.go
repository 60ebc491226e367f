package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task is one input and what processing it produced.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc handles one input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs a ProcessFunc over many inputs on a fixed number of goroutines.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool of workers goroutines, at least one.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the worker pool. The returned tasks are
// in input order whatever order they finished in. Inputs still queued when
// ctx is cancelled come back with ctx's error.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	for i, in := range inputs {
		results[i].Input = in
	}

	inputCh := make(chan int, len(inputs))
	for i := range inputs {
		inputCh <- i
	}
	close(inputCh)

	var wg sync.WaitGroup
	for w := 0; w < min(p.workers, len(inputs)); w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range inputCh {
				if err := ctx.Err(); err != nil {
					results[idx].Err = err
					continue
				}
				result, err := p.process(ctx, inputs[idx])
				results[idx].Result = result
				results[idx].Err = err
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
				}
			}
		}(w)
	}

	wg.Wait()
	return results
}

// Collect returns the results in order, or the first failure.
func Collect[T any, R any](tasks []Task[T, R]) ([]R, error) {
	out := make([]R, 0, len(tasks))
	for i, t := range tasks {
		if t.Err != nil {
			return nil, fmt.Errorf("task %d: %w", i, t.Err)
		}
		out = append(out, t.Result)
	}
	return out, nil
}

// Batch splits inputs into batches of at most batchSize items.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	batches := make([][]T, 0, (len(items)+batchSize-1)/batchSize)
	for start := 0; start < len(items); start += batchSize {
		batches = append(batches, items[start:min(start+batchSize, len(items))])
	}
	return batches
}
