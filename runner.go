package legaldoc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner schedules pipeline work with a pluggable concurrency model.
type Runner interface {
	Go(fn func() error) // schedule
	Wait() error        // join / propagate first err
}

// NewLimitedRunner returns the default Runner, backed by errgroup.Group with
// bounded concurrency. A bound below one is clamped to one.
func NewLimitedRunner(ctx context.Context, maxConcurrency int) Runner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	eg, egCtx := errgroup.WithContext(ctx)
	return &errGroupRunner{
		ctx: egCtx,
		eg:  eg,
		sem: make(chan struct{}, maxConcurrency),
	}
}

type errGroupRunner struct {
	ctx context.Context // derived ctx shared by all tasks
	eg  *errgroup.Group
	sem chan struct{} // concurrency gate
}

func (r *errGroupRunner) Go(fn func() error) {
	r.eg.Go(func() error {
		r.sem <- struct{}{}        // acquire
		defer func() { <-r.sem }() // release
		return fn()
	})
}

func (r *errGroupRunner) Wait() error { return r.eg.Wait() }
