package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// consensus is the unit-weight variant of the voting mechanism: every
// hit casts one vote per rank, and a taxon call is accepted only while
// it holds at least the consensus fraction of the vote. Confidence is
// the vote fraction at the deepest accepted rank.
type consensus struct {
	fraction float64
}

func (s *consensus) Method() model.Method { return model.MethodConsensus }

func (s *consensus) Assign(queryID string, annotated []hits.Annotated) model.Assignment {
	if len(annotated) == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	res := voteLineage(annotated, unitWeight, s.fraction)
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

func unitWeight(model.HitRecord) float64 { return 1 }
