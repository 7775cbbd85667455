// Package result assembles run output: it stamps assignment collections
// with run metadata, derives summary statistics, and exports to the
// supported file formats.
package result

import (
	"time"

	"github.com/google/uuid"

	"github.com/ionspid/taxassign/internal/model"
)

// DefaultTool is recorded when the caller does not name the search tool
// that produced the hits.
const DefaultTool = "blast"

// Build stamps a completed assignment run with its identity and
// parameters. Assignment order is preserved as given.
func Build(method model.Method, tool string, th model.Thresholds, assignments []model.Assignment, parseWarnings int) *model.ResultSet {
	if tool == "" {
		tool = DefaultTool
	}
	return &model.ResultSet{
		RunID:         uuid.NewString(),
		Method:        method,
		Tool:          tool,
		Thresholds:    th,
		CreatedAt:     time.Now().UTC(),
		ParseWarnings: parseWarnings,
		Assignments:   assignments,
	}
}
