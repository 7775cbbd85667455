// Package assign resolves each query's filtered, lineage-annotated hits
// into a single taxonomic call using one of five interchangeable
// strategies.
package assign

import (
	"sort"

	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// Strategy produces one assignment per query. Implementations are
// stateless across queries: each query is resolved independently, so the
// engine may fan queries out to workers freely.
type Strategy interface {
	Method() model.Method
	Assign(queryID string, annotated []hits.Annotated) model.Assignment
}

// New selects a strategy by method and validates its thresholds up
// front, so a doomed configuration fails before any query is processed.
func New(method model.Method, t model.Thresholds) (Strategy, error) {
	if _, err := model.ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if err := t.Validate(method); err != nil {
		return nil, err
	}

	switch method {
	case model.MethodBestHit:
		return &bestHit{}, nil
	case model.MethodThreshold:
		return &thresholdGated{minIdentity: t.MinIdentity, minCoverage: t.MinCoverage}, nil
	case model.MethodLCA:
		return &lca{topHits: t.TopHits}, nil
	case model.MethodWeighted:
		return &weighted{minShare: t.MinWeightShare}, nil
	default:
		return &consensus{fraction: t.ConsensusFraction}, nil
	}
}

// sortCanonical orders hits by the deterministic tie-break chain
// (e-value asc, bit score desc, subject ID asc) without touching the
// caller's slice.
func sortCanonical(annotated []hits.Annotated) []hits.Annotated {
	out := make([]hits.Annotated, len(annotated))
	copy(out, annotated)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Hit.BetterThan(out[j].Hit)
	})
	return out
}

// maxBitScore returns the highest bit score in the hit set.
func maxBitScore(annotated []hits.Annotated) float64 {
	max := 0.0
	for _, a := range annotated {
		if a.Hit.BitScore > max {
			max = a.Hit.BitScore
		}
	}
	return max
}
