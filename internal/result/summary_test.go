package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func assigned(queryID, taxonomy string, confidence float64) model.Assignment {
	lin := model.ParseLineage(taxonomy)
	return model.Assignment{
		QueryID:        queryID,
		Taxonomy:       &lin,
		Method:         model.MethodBestHit,
		Confidence:     confidence,
		SupportingHits: 1,
	}
}

func sampleResultSet() *model.ResultSet {
	return Build(model.MethodBestHit, "", model.Thresholds{MinIdentity: 70}, []model.Assignment{
		assigned("Q1", "Bacteria;Proteobacteria;E.coli", 0.9),
		assigned("Q2", "Bacteria;Proteobacteria;E.coli", 0.8),
		assigned("Q3", "Bacteria;Firmicutes", 0.5),
		model.Unassigned("Q4", model.MethodBestHit),
	}, 2)
}

func TestBuild_StampsRunMetadata(t *testing.T) {
	rs := sampleResultSet()
	assert.NotEmpty(t, rs.RunID)
	assert.Equal(t, DefaultTool, rs.Tool)
	assert.Equal(t, model.MethodBestHit, rs.Method)
	assert.False(t, rs.CreatedAt.IsZero())
	assert.Equal(t, 2, rs.ParseWarnings)

	other := Build(model.MethodLCA, "diamond", model.Thresholds{}, nil, 0)
	assert.Equal(t, "diamond", other.Tool)
	assert.NotEqual(t, rs.RunID, other.RunID)
}

func TestSummarize_Counts(t *testing.T) {
	s := Summarize(sampleResultSet())

	assert.Equal(t, 4, s.TotalQueries)
	assert.Equal(t, 3, s.Assigned)
	assert.Equal(t, 1, s.Unassigned)
	assert.InDelta(t, 0.75, s.AssignmentRate, 1e-9)
	assert.Equal(t, 2, s.ParseWarnings)
}

func TestSummarize_MethodCounts(t *testing.T) {
	s := Summarize(sampleResultSet())

	// Only assigned queries count toward their method.
	assert.Equal(t, map[string]int{"best_hit": 3}, s.MethodCounts)
}

func TestSummarize_ConfidenceIncludesUnassignedZero(t *testing.T) {
	s := Summarize(sampleResultSet())

	assert.InDelta(t, 0.55, s.Confidence.Mean, 1e-9)
	assert.InDelta(t, 0.65, s.Confidence.Median, 1e-9)
	assert.Zero(t, s.Confidence.Min)
	assert.InDelta(t, 0.9, s.Confidence.Max, 1e-9)
}

func TestSummarize_RankCoverage(t *testing.T) {
	s := Summarize(sampleResultSet())

	require.Len(t, s.RankCoverage, 3)
	assert.Equal(t, "kingdom", s.RankCoverage[0].Rank)
	assert.Equal(t, 3, s.RankCoverage[0].Count)
	assert.Equal(t, "phylum", s.RankCoverage[1].Rank)
	assert.Equal(t, 3, s.RankCoverage[1].Count)
	assert.Equal(t, "class", s.RankCoverage[2].Rank)
	assert.Equal(t, 2, s.RankCoverage[2].Count)
	assert.InDelta(t, 0.5, s.RankCoverage[2].Fraction, 1e-9)
}

func TestSummarize_TopTaxa(t *testing.T) {
	s := Summarize(sampleResultSet())

	require.NotEmpty(t, s.TopTaxa)
	assert.Equal(t, "Bacteria;Proteobacteria;E.coli", s.TopTaxa[0].Taxonomy)
	assert.Equal(t, 2, s.TopTaxa[0].Count)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Build(model.MethodLCA, "", model.Thresholds{}, nil, 0))

	assert.Zero(t, s.TotalQueries)
	assert.Zero(t, s.AssignmentRate)
	assert.Empty(t, s.RankCoverage)
	assert.Empty(t, s.TopTaxa)
	assert.Nil(t, s.MethodCounts)
}
