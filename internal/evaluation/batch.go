package evaluation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Evaluator evaluates a single unit of work.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) error
}

// RunBatch evaluates independent units concurrently, at most concurrency at a
// time (unbounded when concurrency <= 0). Each unit is written in its own
// transaction. The first failure cancels units that have not started and is
// returned; units already committed stay committed.
func RunBatch(ctx context.Context, ev Evaluator, requests []Request, concurrency int) error {
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := range requests {
		req := requests[i]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := ev.Evaluate(gctx, req); err != nil {
				return fmt.Errorf("evaluate model %d %s [%s, %s]: %w",
					req.ModelID, req.Matrix, req.Start.Format(windowLayout), req.End.Format(windowLayout), err)
			}

			return nil
		})
	}

	return g.Wait()
}

const windowLayout = "2006-01-02T15:04:05"
