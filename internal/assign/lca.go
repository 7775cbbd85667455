package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// lca assigns the deepest lineage prefix on which the top-N hits agree
// exactly. Lineages of different declared depth are compared only down
// to the shorter one, so a shallow reference entry caps the agreement
// depth rather than producing a spurious disagreement.
type lca struct {
	topHits int
}

func (s *lca) Method() model.Method { return model.MethodLCA }

func (s *lca) Assign(queryID string, annotated []hits.Annotated) model.Assignment {
	if len(annotated) == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	top := sortCanonical(annotated)
	if len(top) > s.topHits {
		top = top[:s.topHits]
	}

	depth := agreementDepth(top)
	if depth == 0 {
		return model.Unassigned(queryID, s.Method())
	}

	// The agreed prefix is identical across all considered lineages, so
	// truncating any of them yields the LCA.
	taxonomy := top[0].Lineage.Truncate(depth)

	return model.Assignment{
		QueryID:        queryID,
		Taxonomy:       &taxonomy,
		Method:         s.Method(),
		Confidence:     float64(depth) / float64(deepestLineage(top)),
		SupportingHits: len(top),
	}
}

// agreementDepth finds the deepest rank at which every lineage carries
// the same taxon, bounded by the shallowest lineage.
func agreementDepth(top []hits.Annotated) int {
	limit := top[0].Lineage.Depth()
	for _, a := range top[1:] {
		if d := a.Lineage.Depth(); d < limit {
			limit = d
		}
	}

	depth := 0
	for r := 0; r < limit; r++ {
		taxon := top[0].Lineage.TaxonAt(r)
		for _, a := range top[1:] {
			if a.Lineage.TaxonAt(r) != taxon {
				return depth
			}
		}
		depth = r + 1
	}
	return depth
}

// deepestLineage returns the maximum declared depth among the considered
// lineages; the confidence denominator counts every rank that could have
// been resolved.
func deepestLineage(top []hits.Annotated) int {
	max := 0
	for _, a := range top {
		if d := a.Lineage.Depth(); d > max {
			max = d
		}
	}
	return max
}
