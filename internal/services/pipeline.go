package services

import (
	"context"
)

// RunSequential processes items one at a time, preserving input order in
// the results. One item failing never stops the batch; cancellation is
// checked at item boundaries only, so the in-flight item always finishes.
// Items not reached after cancellation are mapped through skipped.
func RunSequential[T, R any](ctx context.Context, items []T, process func(context.Context, T) R, skipped func(T) R) []R {
	results := make([]R, 0, len(items))
	cancelled := false
	for _, item := range items {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			results = append(results, skipped(item))
			continue
		}
		results = append(results, process(ctx, item))
	}
	return results
}
