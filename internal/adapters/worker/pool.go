// Package worker fans independent per-file work out to a bounded set of
// goroutines and hands the results back in input order, so a single
// reducer can consume them deterministically.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/trustgraph/pkg/logger"
	"github.com/okian/trustgraph/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
)

// Pool bounds how many tasks run at once.
type Pool struct {
	workers int
	name    string
	logger  logger.Logger
}

// NewPool creates a pool running at most workerCount tasks at a time.
// A count below 1 selects a multiple of the CPU count.
func NewPool(workerCount int, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: workerCount,
		name:    "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Map runs fn over every item on p and returns the outputs in input order.
// Each task writes only its own slot, so fn needs no synchronization beyond
// what it shares itself. The first error cancels the remaining tasks and is
// returned; per-item failures that should not abort the batch must be
// carried inside R instead.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	start := time.Now()
	out := make([]R, len(items))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for i, item := range items {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			r, err := fn(gCtx, item)
			if err != nil {
				return fmt.Errorf("%s task %d: %w", p.name, i, err)
			}
			out[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		metrics.RecordStageError(p.name)
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordStageDuration(p.name, elapsed.Seconds())
	p.logger.Debug(ctx, "tasks completed",
		logger.Int("tasks", len(items)),
		logger.Int("workers", p.workers),
		logger.Duration("elapsed", elapsed),
	)
	return out, nil
}
