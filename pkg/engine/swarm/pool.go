// Package swarm runs independent tasks on a bounded set of goroutines.
package swarm

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task represents a unit of work for the swarm.
type Task func(ctx context.Context) error

// Pool is a one-shot worker pool. Submit tasks, then Wait once.
type Pool struct {
	group   *errgroup.Group
	ctx     context.Context
	workers int
}

// DefaultWorkers is the pool size used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// NewPool creates a pool running at most workers tasks at a time.
// workers <= 0 selects DefaultWorkers.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &Pool{group: g, ctx: gctx, workers: workers}
}

// Submit schedules a task, blocking while all workers are busy.
// The first task error cancels the context seen by tasks that have not finished.
func (p *Pool) Submit(t Task) {
	p.group.Go(func() error {
		return t(p.ctx)
	})
}

// Wait blocks until every submitted task returned and reports the first error.
func (p *Pool) Wait() error {
	return p.group.Wait()
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}
