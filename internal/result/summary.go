package result

import (
	"sort"

	"github.com/ionspid/taxassign/internal/model"
)

// ConfidenceStats describes the confidence distribution across every
// query in the run; unassigned queries contribute their zero.
type ConfidenceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// RankCoverage counts queries classified at least as deep as one rank.
type RankCoverage struct {
	Rank     string  `json:"rank"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"` // of all queries
}

// TaxonCount is one entry in the most-frequent-taxonomy report.
type TaxonCount struct {
	Taxonomy string `json:"taxonomy"`
	Count    int    `json:"count"`
}

// Summary is the aggregate view of one run.
type Summary struct {
	RunID          string          `json:"run_id"`
	Method         model.Method    `json:"method"`
	TotalQueries   int             `json:"total_queries"`
	Assigned       int             `json:"assigned"`
	Unassigned     int             `json:"unassigned"`
	AssignmentRate float64         `json:"assignment_rate"`
	MethodCounts   map[string]int  `json:"method_counts"`
	Confidence     ConfidenceStats `json:"confidence"`
	RankCoverage   []RankCoverage  `json:"rank_coverage"`
	TopTaxa        []TaxonCount    `json:"top_taxa"`
	ParseWarnings  int             `json:"parse_warnings"`
}

// DefaultTopTaxa bounds the most-frequent-taxonomy report.
const DefaultTopTaxa = 10

// Summarize computes run statistics from a result set.
func Summarize(rs *model.ResultSet) Summary {
	s := Summary{
		RunID:         rs.RunID,
		Method:        rs.Method,
		TotalQueries:  len(rs.Assignments),
		ParseWarnings: rs.ParseWarnings,
	}

	confidences := make([]float64, 0, len(rs.Assignments))
	taxa := make(map[string]int)
	methods := make(map[string]int)
	maxDepth := 0

	for _, a := range rs.Assignments {
		confidences = append(confidences, a.Confidence)
		if !a.Assigned() {
			continue
		}
		s.Assigned++
		methods[string(a.Method)]++
		taxa[a.Taxonomy.String()]++
		if d := a.Taxonomy.Depth(); d > maxDepth {
			maxDepth = d
		}
	}
	s.Unassigned = s.TotalQueries - s.Assigned
	if s.TotalQueries > 0 {
		s.AssignmentRate = float64(s.Assigned) / float64(s.TotalQueries)
	}

	if len(methods) > 0 {
		s.MethodCounts = methods
	}
	s.Confidence = confidenceStats(confidences)
	s.RankCoverage = rankCoverage(rs.Assignments, maxDepth)
	s.TopTaxa = topTaxa(taxa, DefaultTopTaxa)
	return s
}

func confidenceStats(values []float64) ConfidenceStats {
	if len(values) == 0 {
		return ConfidenceStats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return ConfidenceStats{
		Mean:   sum / float64(len(sorted)),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

func rankCoverage(assignments []model.Assignment, maxDepth int) []RankCoverage {
	if maxDepth == 0 || len(assignments) == 0 {
		return nil
	}

	coverage := make([]RankCoverage, maxDepth)
	for d := 1; d <= maxDepth; d++ {
		coverage[d-1].Rank = model.RankLabel(d)
	}
	for _, a := range assignments {
		if !a.Assigned() {
			continue
		}
		for d := 1; d <= a.Taxonomy.Depth() && d <= maxDepth; d++ {
			coverage[d-1].Count++
		}
	}
	for i := range coverage {
		coverage[i].Fraction = float64(coverage[i].Count) / float64(len(assignments))
	}
	return coverage
}

func topTaxa(counts map[string]int, limit int) []TaxonCount {
	out := make([]TaxonCount, 0, len(counts))
	for taxonomy, n := range counts {
		out = append(out, TaxonCount{Taxonomy: taxonomy, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Taxonomy < out[j].Taxonomy
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
