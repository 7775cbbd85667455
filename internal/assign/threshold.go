package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// thresholdGated picks the best hit exactly like bestHit, then accepts
// it only if it clears the identity and coverage gates. A best hit that
// fails a gate leaves the query unassigned rather than falling through
// to a weaker hit.
type thresholdGated struct {
	minIdentity float64
	minCoverage float64
}

func (s *thresholdGated) Method() model.Method { return model.MethodThreshold }

func (s *thresholdGated) Assign(queryID string, annotated []hits.Annotated) model.Assignment {
	if len(annotated) == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	chosen := sortCanonical(annotated)[0]

	if chosen.Hit.PercentIdentity < s.minIdentity {
		return model.Unassigned(queryID, s.Method())
	}
	// The coverage gate only applies when the search tool reported it.
	if chosen.Hit.QueryCoverage != nil && *chosen.Hit.QueryCoverage < s.minCoverage {
		return model.Unassigned(queryID, s.Method())
	}

	taxonomy := chosen.Lineage
	return model.Assignment{
		QueryID:        queryID,
		Taxonomy:       &taxonomy,
		Method:         s.Method(),
		Confidence:     bitScoreShare(chosen, annotated),
		SupportingHits: 1,
	}
}
