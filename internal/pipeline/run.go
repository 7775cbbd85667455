// Package pipeline orchestrates one assignment run: quality filtering,
// lineage annotation, parallel strategy execution, and result assembly.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/assign"
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/lineage"
	"github.com/ionspid/taxassign/internal/model"
	"github.com/ionspid/taxassign/internal/result"
)

// Params configures one run.
type Params struct {
	Method        model.Method
	Tool          string
	Thresholds    model.Thresholds
	Workers       int
	ParseWarnings int
}

// Output bundles everything a run produces.
type Output struct {
	Set           *model.ResultSet
	Summary       result.Summary
	LineageMisses int
}

// Run executes the full pipeline over raw hits. Every query present in
// the input appears in the output: a query whose hits are all rejected
// by the quality gates comes back unassigned, never as an error.
func Run(ctx context.Context, in []model.HitRecord, src lineage.Source, p Params) (*Output, error) {
	start := time.Now()

	strategy, err := assign.New(p.Method, p.Thresholds)
	if err != nil {
		return nil, err
	}

	// Invalid records are dropped and counted like malformed file rows;
	// their queries resolve from whatever valid evidence remains.
	warnings := p.ParseWarnings
	valid := make([]model.HitRecord, 0, len(in))
	for _, h := range in {
		if verr := h.Validate(); verr != nil {
			warnings++
			zap.L().Debug("pipeline: dropping invalid hit",
				zap.String("query_id", h.QueryID), zap.Error(verr))
			continue
		}
		valid = append(valid, h)
	}
	if dropped := len(in) - len(valid); dropped > 0 {
		zap.L().Warn("pipeline: invalid hits dropped", zap.Int("count", dropped))
	}

	queryOrder := firstSeenQueries(valid)

	// A zero gate means the caller never set it; only positive values
	// filter.
	var opts hits.FilterOptions
	if p.Thresholds.MaxEValue > 0 {
		opts.MaxEValue = &p.Thresholds.MaxEValue
	}
	if p.Thresholds.MinBitScore > 0 {
		opts.MinBitScore = &p.Thresholds.MinBitScore
	}
	filtered, err := hits.Filter(valid, opts)
	if err != nil {
		return nil, err
	}

	resolver := lineage.NewResolver(src)
	grouped := hits.Group(ctx, filtered, resolver)

	assignments, err := assign.NewEngine(strategy, p.Workers).Run(ctx, grouped)
	if err != nil {
		return nil, err
	}

	assignments = restoreDroppedQueries(queryOrder, assignments, p.Method)

	rs := result.Build(p.Method, p.Tool, p.Thresholds, assignments, warnings)
	summary := result.Summarize(rs)

	zap.L().Info("pipeline: run complete",
		zap.String("run_id", rs.RunID),
		zap.String("method", string(p.Method)),
		zap.Int("queries", summary.TotalQueries),
		zap.Int("assigned", summary.Assigned),
		zap.Int("hits_in", len(in)),
		zap.Int("hits_kept", len(filtered)),
		zap.Int("lineage_misses", resolver.Misses()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Output{Set: rs, Summary: summary, LineageMisses: resolver.Misses()}, nil
}

func firstSeenQueries(in []model.HitRecord) []string {
	seen := make(map[string]struct{}, len(in))
	var order []string
	for _, h := range in {
		if _, ok := seen[h.QueryID]; ok {
			continue
		}
		seen[h.QueryID] = struct{}{}
		order = append(order, h.QueryID)
	}
	return order
}

// restoreDroppedQueries reinserts queries whose hits were all rejected
// by the quality gates, keeping first-seen input order throughout.
func restoreDroppedQueries(order []string, assignments []model.Assignment, method model.Method) []model.Assignment {
	if len(assignments) == len(order) {
		return assignments
	}

	byQuery := make(map[string]model.Assignment, len(assignments))
	for _, a := range assignments {
		byQuery[a.QueryID] = a
	}

	out := make([]model.Assignment, 0, len(order))
	for _, queryID := range order {
		a, ok := byQuery[queryID]
		if !ok {
			a = model.Unassigned(queryID, method)
		}
		out = append(out, a)
	}
	return out
}
