package lineage

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

// Resolver maps subject IDs to lineages with a per-run cache. Lookups
// are idempotent within a run, and the cache is read-mostly: a mutex
// guards population, after which entries are never rewritten.
//
// A missing mapping is never an error. The resolver falls back to a
// synthetic single-rank lineage so downstream strategies still see a
// low-information placeholder instead of a hole.
type Resolver struct {
	src Source

	mu     sync.Mutex
	cache  map[string]model.Lineage
	misses int
}

// NewResolver wraps a mapping source. A nil source resolves everything
// synthetically, matching a run without a taxonomy map.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src, cache: make(map[string]model.Lineage)}
}

// Resolve returns the lineage for a subject, consulting the cache first.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) model.Lineage {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.cache[subjectID]; ok {
		return l
	}

	l := r.lookup(ctx, subjectID)
	r.cache[subjectID] = l
	return l
}

func (r *Resolver) lookup(ctx context.Context, subjectID string) model.Lineage {
	if r.src == nil {
		r.misses++
		return model.SyntheticLineage(subjectID)
	}

	raw, found, err := r.src.Lookup(ctx, subjectID)
	if err != nil {
		// The source was readable at startup; a mid-run lookup failure
		// degrades this one subject to the synthetic fallback.
		zap.L().Warn("lineage: lookup failed, using synthetic fallback",
			zap.String("subject_id", subjectID), zap.Error(err))
		r.misses++
		return model.SyntheticLineage(subjectID)
	}
	if !found {
		r.misses++
		return model.SyntheticLineage(subjectID)
	}

	l := model.ParseLineage(raw)
	if l.Depth() == 0 {
		r.misses++
		return model.SyntheticLineage(subjectID)
	}
	return l
}

// Misses returns how many subjects fell back to a synthetic lineage.
func (r *Resolver) Misses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.misses
}
