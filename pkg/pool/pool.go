package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerFunc defines the function signature for a worker that processes an item and may return an error.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Run processes a slice of items concurrently using at most numWorkers
// goroutines. Every error is collected and returned; a failing item never
// aborts the rest of the batch. When the context is cancelled, no further
// items are started.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(numWorkers)
	errChan := make(chan error, len(items))

	for _, item := range items {
		item := item // per-iteration copy: required for Go <1.22 loop semantics
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := workerFunc(ctx, item); err != nil {
				errChan <- err
			}
			return nil
		})
	}

	_ = g.Wait()
	close(errChan)

	var allErrors []error
	for err := range errChan {
		allErrors = append(allErrors, err)
	}
	return allErrors
}
