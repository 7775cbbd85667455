package hits

import (
	"github.com/ionspid/taxassign/internal/model"
)

// FilterOptions holds the quality gates applied to a hit collection.
// A nil threshold disables that check.
type FilterOptions struct {
	MinIdentity     *float64
	MinLength       *int
	MaxEValue       *float64
	MinBitScore     *float64
	KeepBestHitOnly bool
	RemoveSelfHits  bool
}

// Validate rejects thresholds outside their domain before any hit is
// touched.
func (o FilterOptions) Validate() error {
	if o.MinIdentity != nil && (*o.MinIdentity < 0 || *o.MinIdentity > 100) {
		return &model.ValidationError{Field: "min_identity", Reason: "must be within [0,100]"}
	}
	if o.MinLength != nil && *o.MinLength < 0 {
		return &model.ValidationError{Field: "min_length", Reason: "must be >= 0"}
	}
	if o.MaxEValue != nil && *o.MaxEValue < 0 {
		return &model.ValidationError{Field: "max_evalue", Reason: "must be >= 0"}
	}
	if o.MinBitScore != nil && *o.MinBitScore < 0 {
		return &model.ValidationError{Field: "min_bit_score", Reason: "must be >= 0"}
	}
	return nil
}

// Filter applies the quality gates and returns the survivors as a new
// slice, preserving their relative input order. The input is never
// mutated, and filtering twice with the same options yields the same
// result.
func Filter(in []model.HitRecord, opts FilterOptions) ([]model.HitRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := make([]model.HitRecord, 0, len(in))
	for _, h := range in {
		if opts.RemoveSelfHits && h.IsSelfHit() {
			continue
		}
		if opts.MinIdentity != nil && h.PercentIdentity < *opts.MinIdentity {
			continue
		}
		if opts.MinLength != nil && h.AlignmentLength < *opts.MinLength {
			continue
		}
		if opts.MaxEValue != nil && h.EValue > *opts.MaxEValue {
			continue
		}
		if opts.MinBitScore != nil && h.BitScore < *opts.MinBitScore {
			continue
		}
		out = append(out, h)
	}

	if opts.KeepBestHitOnly {
		out = bestPerQuery(out)
	}
	return out, nil
}

// bestPerQuery retains exactly one hit per query: the winner under the
// canonical ordering (lowest e-value, then highest bit score, then
// smallest subject ID), regardless of source order. Survivors keep their
// relative positions.
func bestPerQuery(in []model.HitRecord) []model.HitRecord {
	best := make(map[string]int, len(in))
	for i, h := range in {
		j, seen := best[h.QueryID]
		if !seen || h.BetterThan(in[j]) {
			best[h.QueryID] = i
		}
	}

	out := make([]model.HitRecord, 0, len(best))
	for i, h := range in {
		if best[h.QueryID] == i {
			out = append(out, h)
		}
	}
	return out
}
