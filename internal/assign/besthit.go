package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// bestHit assigns each query the full lineage of its single strongest
// hit. Confidence is the chosen hit's bit score relative to the query's
// best bit score, so a clear winner scores 1.0 and a hit picked purely
// on e-value over a higher-scoring rival scores below it.
type bestHit struct{}

func (s *bestHit) Method() model.Method { return model.MethodBestHit }

func (s *bestHit) Assign(queryID string, annotated []hits.Annotated) model.Assignment {
	if len(annotated) == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	chosen := sortCanonical(annotated)[0]
	taxonomy := chosen.Lineage

	return model.Assignment{
		QueryID:        queryID,
		Taxonomy:       &taxonomy,
		Method:         s.Method(),
		Confidence:     bitScoreShare(chosen, annotated),
		SupportingHits: 1,
	}
}

// bitScoreShare normalizes the chosen hit's bit score against the set
// maximum. A degenerate all-zero set still counts as a top hit.
func bitScoreShare(chosen hits.Annotated, annotated []hits.Annotated) float64 {
	max := maxBitScore(annotated)
	if max <= 0 {
		return 1.0
	}
	return chosen.Hit.BitScore / max
}
