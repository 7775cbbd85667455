package assign

// Strategies emit a raw confidence signal; Finalize is the single
// normalization pass that clamps it into [0,1] and enforces the
// invariant that confidence is zero exactly when the query is
// unassigned. Keeping this out of the strategies means they stay
// interchangeable without each duplicating the normalization rules.

import (
	"github.com/ionspid/taxassign/internal/model"
)

// minAssignedConfidence keeps an accepted call from reporting exactly
// zero, which is reserved for unassigned queries.
const minAssignedConfidence = 1e-6

// Finalize normalizes an assignment's confidence.
func Finalize(a model.Assignment) model.Assignment {
	if !a.Assigned() {
		a.Taxonomy = nil
		a.Confidence = 0
		return a
	}

	switch {
	case a.Confidence > 1:
		a.Confidence = 1
	case a.Confidence < minAssignedConfidence:
		a.Confidence = minAssignedConfidence
	}
	return a
}
