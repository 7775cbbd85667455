package assign

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// Engine fans grouped queries out to a bounded worker pool. Queries are
// independent of each other, so the only shared state is the read-only
// lineage annotations already attached to the hits.
type Engine struct {
	strategy Strategy
	workers  int
}

// NewEngine builds an engine with the given parallelism; workers <= 0
// uses one worker per CPU.
func NewEngine(strategy Strategy, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{strategy: strategy, workers: workers}
}

// Run resolves every query and returns assignments in first-seen query
// order, regardless of worker completion order. Cancellation stops
// submission of further queries but lets in-flight resolutions finish,
// preserving per-query atomicity; the assignments completed so far are
// returned alongside the context error.
func (e *Engine) Run(ctx context.Context, grouped hits.Grouped) ([]model.Assignment, error) {
	out := make([]model.Assignment, len(grouped.Order))

	g := &errgroup.Group{}
	g.SetLimit(e.workers)

	submitted := 0
	for i, queryID := range grouped.Order {
		if ctx.Err() != nil {
			break
		}
		submitted++
		g.Go(func() error {
			out[i] = Finalize(e.strategy.Assign(queryID, grouped.ByQuery[queryID]))
			return nil
		})
	}

	// Worker funcs never fail; Wait only synchronizes completion.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		zap.L().Warn("assign: run cancelled",
			zap.Int("completed", submitted),
			zap.Int("total", len(grouped.Order)),
		)
		return out[:submitted], eris.Wrap(err, "assign: run cancelled")
	}

	return out, nil
}
