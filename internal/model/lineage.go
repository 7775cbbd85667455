package model

import (
	"strconv"
	"strings"
)

// LineageSeparator joins taxon names in serialized lineage strings,
// e.g. "Bacteria;Proteobacteria;Escherichia coli".
const LineageSeparator = ";"

// defaultRanks labels the first seven lineage depths for reporting.
// Deeper positions are labeled rank_8, rank_9, and so on.
var defaultRanks = []string{"kingdom", "phylum", "class", "order", "family", "genus", "species"}

// Lineage is an ordered chain of taxon names from broad to specific.
// A lineage may be truncated when the source mapping is shallow; depth 0
// means completely unresolved.
type Lineage struct {
	Taxa []string `json:"taxa"`
}

// ParseLineage splits a delimiter-joined lineage string into taxa.
// Empty segments and surrounding whitespace are dropped.
func ParseLineage(s string) Lineage {
	var taxa []string
	for _, part := range strings.Split(s, LineageSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			taxa = append(taxa, part)
		}
	}
	return Lineage{Taxa: taxa}
}

// SyntheticLineage builds the single-rank fallback lineage used when no
// mapping exists for a subject. Callers must treat it as low-information.
func SyntheticLineage(subjectID string) Lineage {
	return Lineage{Taxa: []string{"Subject_" + subjectID}}
}

// Depth returns the number of resolved ranks.
func (l Lineage) Depth() int {
	return len(l.Taxa)
}

// String joins the taxa back into the serialized form.
func (l Lineage) String() string {
	return strings.Join(l.Taxa, LineageSeparator)
}

// Truncate returns a copy of the lineage cut to at most depth ranks.
func (l Lineage) Truncate(depth int) Lineage {
	if depth < 0 {
		depth = 0
	}
	if depth > len(l.Taxa) {
		depth = len(l.Taxa)
	}
	taxa := make([]string, depth)
	copy(taxa, l.Taxa[:depth])
	return Lineage{Taxa: taxa}
}

// TaxonAt returns the taxon name at the given zero-based depth, or ""
// when the lineage does not reach that deep.
func (l Lineage) TaxonAt(depth int) string {
	if depth < 0 || depth >= len(l.Taxa) {
		return ""
	}
	return l.Taxa[depth]
}

// CompatibleUpTo reports whether both lineages agree exactly
// (case-sensitive) at every rank below depth r. Ranks beyond either
// lineage's declared depth are not compared.
func (l Lineage) CompatibleUpTo(other Lineage, r int) bool {
	if r > len(l.Taxa) {
		r = len(l.Taxa)
	}
	if r > len(other.Taxa) {
		r = len(other.Taxa)
	}
	for i := 0; i < r; i++ {
		if l.Taxa[i] != other.Taxa[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix matches this lineage rank-for-rank.
func (l Lineage) HasPrefix(prefix []string) bool {
	if len(prefix) > len(l.Taxa) {
		return false
	}
	for i, t := range prefix {
		if l.Taxa[i] != t {
			return false
		}
	}
	return true
}

// RankLabel names a one-based lineage depth for reports.
func RankLabel(depth int) string {
	if depth >= 1 && depth <= len(defaultRanks) {
		return defaultRanks[depth-1]
	}
	return "rank_" + strconv.Itoa(depth)
}
