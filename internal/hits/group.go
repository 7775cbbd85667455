package hits

import (
	"context"

	"github.com/ionspid/taxassign/internal/model"
)

// Resolver maps a subject identifier to its taxonomic lineage. It never
// fails for an unknown subject; a synthetic single-rank lineage stands in.
type Resolver interface {
	Resolve(ctx context.Context, subjectID string) model.Lineage
}

// Annotated pairs one hit with its subject's lineage.
type Annotated struct {
	Hit     model.HitRecord `json:"hit"`
	Lineage model.Lineage   `json:"lineage"`
}

// Grouped holds lineage-annotated hits keyed by query, with first-seen
// query order preserved for deterministic output.
type Grouped struct {
	Order   []string
	ByQuery map[string][]Annotated
}

// Group annotates each hit with its subject lineage and buckets hits by
// query ID.
func Group(ctx context.Context, in []model.HitRecord, r Resolver) Grouped {
	g := Grouped{ByQuery: make(map[string][]Annotated, len(in))}
	for _, h := range in {
		if _, seen := g.ByQuery[h.QueryID]; !seen {
			g.Order = append(g.Order, h.QueryID)
		}
		g.ByQuery[h.QueryID] = append(g.ByQuery[h.QueryID], Annotated{
			Hit:     h,
			Lineage: r.Resolve(ctx, h.SubjectID),
		})
	}
	return g
}
