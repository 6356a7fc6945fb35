package poller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item and returns the results in input order.
//
// With maxConcurrency <= 1 items are processed one after another. Otherwise
// up to maxConcurrency workers run at once. Either way the first error
// aborts the remaining work: no further items are started, the context
// passed to in-flight calls is cancelled, and Map returns that error with
// nil results.
func Map[T, R any](ctx context.Context, items []T, maxConcurrency int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if maxConcurrency <= 1 || len(items) <= 1 {
		return mapSequential(ctx, items, fn)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	// each call writes only its own slot
	results := make([]R, len(items))
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func mapSequential[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := fn(ctx, item)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
