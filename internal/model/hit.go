package model

// HitRecord is one normalized row of alignment evidence: a reported match
// between a query sequence and a subject (database) sequence.
type HitRecord struct {
	QueryID         string   `json:"query_id"`
	SubjectID       string   `json:"subject_id"`
	PercentIdentity float64  `json:"percent_identity"`
	AlignmentLength int      `json:"alignment_length"`
	EValue          float64  `json:"evalue"`
	BitScore        float64  `json:"bit_score"`
	QueryCoverage   *float64 `json:"query_coverage,omitempty"` // nil when the search tool did not report it
}

// Validate checks that all fields are within their documented domains.
func (h HitRecord) Validate() error {
	if h.QueryID == "" {
		return &ValidationError{Field: "query_id", Reason: "must not be empty"}
	}
	if h.SubjectID == "" {
		return &ValidationError{Field: "subject_id", Reason: "must not be empty"}
	}
	if h.PercentIdentity < 0 || h.PercentIdentity > 100 {
		return &ValidationError{Field: "percent_identity", Reason: "must be within [0,100]"}
	}
	if h.AlignmentLength < 0 {
		return &ValidationError{Field: "alignment_length", Reason: "must be >= 0"}
	}
	if h.EValue < 0 {
		return &ValidationError{Field: "evalue", Reason: "must be >= 0"}
	}
	if h.BitScore < 0 {
		return &ValidationError{Field: "bit_score", Reason: "must be >= 0"}
	}
	if h.QueryCoverage != nil && (*h.QueryCoverage < 0 || *h.QueryCoverage > 100) {
		return &ValidationError{Field: "query_coverage", Reason: "must be within [0,100]"}
	}
	return nil
}

// IsSelfHit reports whether the hit aligns a sequence against itself.
func (h HitRecord) IsSelfHit() bool {
	return h.QueryID == h.SubjectID
}

// BetterThan imposes the canonical hit ordering: lower e-value wins, ties
// broken by higher bit score, remaining ties by lexicographically smaller
// subject ID. Floating-point equality on real data is possible, so all
// three levels matter for determinism.
func (h HitRecord) BetterThan(other HitRecord) bool {
	if h.EValue != other.EValue {
		return h.EValue < other.EValue
	}
	if h.BitScore != other.BitScore {
		return h.BitScore > other.BitScore
	}
	return h.SubjectID < other.SubjectID
}
