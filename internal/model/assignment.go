package model

import "time"

// Method selects one of the interchangeable assignment strategies.
type Method string

const (
	MethodBestHit   Method = "best_hit"
	MethodThreshold Method = "threshold"
	MethodLCA       Method = "lca"
	MethodWeighted  Method = "weighted"
	MethodConsensus Method = "consensus"
)

// Methods lists all valid assignment methods.
func Methods() []Method {
	return []Method{MethodBestHit, MethodThreshold, MethodLCA, MethodWeighted, MethodConsensus}
}

// ParseMethod validates a method name supplied by the caller.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "method", Reason: "must be one of best_hit, threshold, lca, weighted, consensus"}
}

// Assignment is the output unit: one taxonomic call per query.
// Taxonomy is nil when the query could not be assigned; in that case
// Confidence is exactly 0 and vice versa.
type Assignment struct {
	QueryID        string   `json:"query_id"`
	Taxonomy       *Lineage `json:"taxonomy"`
	Method         Method   `json:"method"`
	Confidence     float64  `json:"confidence"`
	SupportingHits int      `json:"supporting_hits"`
}

// Assigned reports whether the query received a taxonomic call.
func (a Assignment) Assigned() bool {
	return a.Taxonomy != nil && a.Taxonomy.Depth() > 0
}

// Unassigned builds the assignment for a query with no usable evidence.
// This is the expected outcome for queries whose hits were all filtered
// out, never an error.
func Unassigned(queryID string, method Method) Assignment {
	return Assignment{QueryID: queryID, Method: method}
}

// Thresholds bundles every method-specific parameter. A strategy only
// reads the fields relevant to it.
type Thresholds struct {
	MinIdentity       float64 `json:"min_identity" yaml:"min_identity" mapstructure:"min_identity"`
	MinCoverage       float64 `json:"min_coverage" yaml:"min_coverage" mapstructure:"min_coverage"`
	MaxEValue         float64 `json:"max_evalue" yaml:"max_evalue" mapstructure:"max_evalue"`
	MinBitScore       float64 `json:"min_bit_score" yaml:"min_bit_score" mapstructure:"min_bit_score"`
	TopHits           int     `json:"top_hits" yaml:"top_hits" mapstructure:"top_hits"`
	ConsensusFraction float64 `json:"consensus_fraction" yaml:"consensus_fraction" mapstructure:"consensus_fraction"`
	MinWeightShare    float64 `json:"min_weight_share" yaml:"min_weight_share" mapstructure:"min_weight_share"`
}

// Validate fails fast on a doomed configuration so no partial results are
// ever produced from malformed thresholds.
func (t Thresholds) Validate(m Method) error {
	if t.MinIdentity < 0 || t.MinIdentity > 100 {
		return &ValidationError{Field: "min_identity", Reason: "must be within [0,100]"}
	}
	if t.MinCoverage < 0 || t.MinCoverage > 100 {
		return &ValidationError{Field: "min_coverage", Reason: "must be within [0,100]"}
	}
	if t.MaxEValue < 0 {
		return &ValidationError{Field: "max_evalue", Reason: "must be >= 0"}
	}
	if t.MinBitScore < 0 {
		return &ValidationError{Field: "min_bit_score", Reason: "must be >= 0"}
	}
	if m == MethodLCA && t.TopHits < 1 {
		return &ValidationError{Field: "top_hits", Reason: "must be >= 1"}
	}
	if m == MethodConsensus && (t.ConsensusFraction <= 0 || t.ConsensusFraction > 1) {
		return &ValidationError{Field: "consensus_fraction", Reason: "must be within (0,1]"}
	}
	if m == MethodWeighted && (t.MinWeightShare < 0 || t.MinWeightShare > 1) {
		return &ValidationError{Field: "min_weight_share", Reason: "must be within [0,1]"}
	}
	return nil
}

// ResultSet owns the ordered assignment collection for one run plus run
// metadata. Order is first-seen query order, restored regardless of
// worker completion order.
type ResultSet struct {
	RunID         string       `json:"run_id"`
	Method        Method       `json:"method"`
	Tool          string       `json:"tool"`
	Thresholds    Thresholds   `json:"thresholds"`
	CreatedAt     time.Time    `json:"created_at"`
	ParseWarnings int          `json:"parse_warnings"`
	Assignments   []Assignment `json:"assignments"`
}
