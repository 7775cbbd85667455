package assign

import (
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/model"
)

// voteResult is the outcome of rank-by-rank plurality voting.
type voteResult struct {
	lineage    model.Lineage
	share      float64 // winning share at the deepest accepted rank
	supporting int     // hits whose lineage matches the accepted prefix
}

// voteLineage walks ranks from broadest to most specific. At each rank,
// hits whose lineage matches the already-accepted prefix vote for their
// taxon with weightFn(hit) weight; the heaviest taxon wins, ties broken
// by lexicographically smaller name. The share denominator is the total
// weight of every hit deep enough to vote at that rank, so a hit that
// diverged higher up still dilutes the winner's share. The walk stops at
// the first rank whose winning share drops below minShare.
//
// Conditioning votes on the accepted prefix guarantees the emitted
// lineage is a real path through the reference taxonomy, never a chimera
// of taxa from incompatible branches. The per-rank share sequence does
// not depend on minShare, which is what makes a stricter threshold
// always truncate at the same rank or shallower.
func voteLineage(annotated []hits.Annotated, weightFn func(model.HitRecord) float64, minShare float64) voteResult {
	maxDepth := 0
	for _, a := range annotated {
		if d := a.Lineage.Depth(); d > maxDepth {
			maxDepth = d
		}
	}

	var accepted []string
	lastShare := 0.0

	for r := 0; r < maxDepth; r++ {
		total := 0.0
		votes := make(map[string]float64)
		for _, a := range annotated {
			if a.Lineage.Depth() <= r {
				continue
			}
			w := weightFn(a.Hit)
			if w <= 0 {
				continue
			}
			total += w
			if a.Lineage.HasPrefix(accepted) {
				votes[a.Lineage.TaxonAt(r)] += w
			}
		}
		if total <= 0 || len(votes) == 0 {
			break
		}

		winner := ""
		winnerWeight := 0.0
		for taxon, w := range votes {
			if w > winnerWeight || (w == winnerWeight && (winner == "" || taxon < winner)) {
				winner, winnerWeight = taxon, w
			}
		}

		share := winnerWeight / total
		if share < minShare {
			break
		}
		accepted = append(accepted, winner)
		lastShare = share
	}

	if len(accepted) == 0 {
		return voteResult{}
	}

	supporting := 0
	for _, a := range annotated {
		if a.Lineage.HasPrefix(accepted) {
			supporting++
		}
	}
	return voteResult{
		lineage:    model.Lineage{Taxa: accepted},
		share:      lastShare,
		supporting: supporting,
	}
}
