// Package fanout runs a fetch function over a list of inputs with a bounded
// number of goroutines in flight.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is the number of tasks allowed in flight when no limit is configured.
const DefaultLimit = 100

// ErrTaskPanicked wraps the value recovered from a panicking task.
var ErrTaskPanicked = errors.New("task panicked")

// Result is the outcome of one task. Exactly one of Value or Err is meaningful.
type Result[R any] struct {
	Value    R
	Err      error
	Duration time.Duration
}

// OK reports whether the task succeeded.
func (r Result[R]) OK() bool {
	return r.Err == nil
}

// FetchAll calls fetch for every item with at most limit calls running at once
// and returns one Result per item, in input order.
//
// A failing or panicking task fills its own slot with an error and never
// stops the others. Once ctx is done the remaining tasks get ctx.Err().
// FetchAll always returns len(items) results.
func FetchAll[T, R any](ctx context.Context, items []T, limit int, fetch func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = run(ctx, item, fetch)

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// Errors counts the failed results.
func Errors[R any](results []Result[R]) int {
	n := 0

	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}

	return n
}

func run[T, R any](ctx context.Context, item T, fetch func(context.Context, T) (R, error)) (res Result[R]) {
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)

		if p := recover(); p != nil {
			var zero R

			res.Value = zero
			res.Err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
		}
	}()

	// Tasks still queued when ctx is done fail without calling fetch.
	if err := ctx.Err(); err != nil {
		return Result[R]{Err: err}
	}

	v, err := fetch(ctx, item)
	if err != nil {
		return Result[R]{Err: err}
	}

	return Result[R]{Value: v}
}
