// Package worker provides a bounded-concurrency fan-out pool used to run a
// batch of independent I/O tasks (IPFS fetches, per-entity store writes)
// with a configurable degree of parallelism, per-block ordering of results
// preserved, and cancellation propagated to every in-flight task.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks with at most Limit running concurrently.
type Pool struct {
	limit int
}

// NewPool creates a pool that runs at most limit tasks concurrently. A
// limit <= 0 means unbounded.
func NewPool(limit int) *Pool {
	return &Pool{limit: limit}
}

// Task is a unit of work submitted to a Pool.
type Task func(ctx context.Context) error

// Run executes every task, bounded by the pool's concurrency limit. It
// returns the first error encountered; on first error, ctx is canceled for
// every still-running or not-yet-started task, matching the cooperative
// cancellation the indexer's ingestion pipeline relies on between
// suspension points.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		group.SetLimit(p.limit)
	}
	for _, task := range tasks {
		task := task
		group.Go(func() error {
			return task(groupCtx)
		})
	}
	return group.Wait()
}

// RunIndexed executes fn(i) for i in [0, n) bounded by the pool's
// concurrency limit and collects results in index order, so callers that
// need per-block or per-item ordering preserved across a fan-out can rely
// on results[i] corresponding to item i regardless of completion order.
func RunIndexed[T any](ctx context.Context, p *Pool, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	group, groupCtx := errgroup.WithContext(ctx)
	if p.limit > 0 {
		group.SetLimit(p.limit)
	}
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			result, err := fn(groupCtx, i)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
