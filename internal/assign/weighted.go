package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// weighted runs rank-by-rank plurality voting with bit score as the vote
// weight, falling back to percent identity for hits without a bit score.
// The lineage is truncated at the first rank where the winning weight
// share drops below the configured floor; confidence is the winning
// share at the deepest accepted rank.
type weighted struct {
	minShare float64
}

func (s *weighted) Method() model.Method { return model.MethodWeighted }

func (s *weighted) Assign(queryID string, annotated []hits.Annotated) model.Assignment {
	if len(annotated) == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	res := voteLineage(annotated, hitWeight, s.minShare)
	if res.lineage.Depth() == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	taxonomy := res.lineage
	return model.Assignment{
		QueryID:        queryID,
		Taxonomy:       &taxonomy,
		Method:         s.Method(),
		Confidence:     res.share,
		SupportingHits: res.supporting,
	}
}

func hitWeight(h model.HitRecord) float64 {
	if h.BitScore > 0 {
		return h.BitScore
	}
	return h.PercentIdentity
}
