package hits

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRead_SixColumnTSV(t *testing.T) {
	in := "Q1\tS1\t99.0\t150\t1e-50\t280\nQ1\tS2\t80.0\t150\t1e-10\t150\n"
	hits, warnings, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Zero(t, warnings)
	require.Len(t, hits, 2)
	assert.Equal(t, "Q1", hits[0].QueryID)
	assert.Equal(t, "S1", hits[0].SubjectID)
	assert.Equal(t, 99.0, hits[0].PercentIdentity)
	assert.Equal(t, 150, hits[0].AlignmentLength)
	assert.Equal(t, 1e-50, hits[0].EValue)
	assert.Equal(t, 280.0, hits[0].BitScore)
	assert.Nil(t, hits[0].QueryCoverage)
}

func TestRead_SeventhColumnIsCoverage(t *testing.T) {
	in := "Q1\tS1\t99.0\t150\t1e-50\t280\t95.0\n"
	hits, _, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].QueryCoverage)
	assert.Equal(t, 95.0, *hits[0].QueryCoverage)
}

func TestRead_Outfmt6(t *testing.T) {
	// qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore
	in := "Q1\tS1\t97.5\t120\t3\t0\t1\t120\t5\t124\t2e-40\t188\n"
	hits, _, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 97.5, hits[0].PercentIdentity)
	assert.Equal(t, 120, hits[0].AlignmentLength)
	assert.Equal(t, 2e-40, hits[0].EValue)
	assert.Equal(t, 188.0, hits[0].BitScore)
}

func TestRead_SkipsHeaderRow(t *testing.T) {
	in := "query_id\tsubject_id\tpercent_identity\talignment_length\tevalue\tbit_score\n" +
		"Q1\tS1\t99.0\t150\t1e-50\t280\n"
	hits, warnings, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Zero(t, warnings)
	assert.Len(t, hits, 1)
}

func TestRead_MalformedRowsCountedNotFatal(t *testing.T) {
	in := "Q1\tS1\t99.0\t150\t1e-50\t280\n" +
		"Q2\tS2\tnot-a-number\t150\t1e-10\t150\n" +
		"Q3\tS3\t88.0\n" +
		"Q4\tS4\t91.0\t100\t1e-20\t190\n"
	hits, warnings, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Equal(t, 2, warnings)
	require.Len(t, hits, 2)
	assert.Equal(t, "Q1", hits[0].QueryID)
	assert.Equal(t, "Q4", hits[1].QueryID)
}

func TestRead_OutOfDomainRowSkipped(t *testing.T) {
	in := "Q1\tS1\t150.0\t150\t1e-50\t280\n"
	hits, warnings, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Equal(t, 1, warnings)
	assert.Empty(t, hits)
}

func TestRead_CommentsIgnored(t *testing.T) {
	in := "# produced by blastn\nQ1\tS1\t99.0\t150\t1e-50\t280\n"
	hits, warnings, err := Read(strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Zero(t, warnings)
	assert.Len(t, hits, 1)
}

func TestReadFile_CSVByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.csv")
	require.NoError(t, os.WriteFile(path, []byte("Q1,S1,99.0,150,1e-50,280\n"), 0o644))

	hits, warnings, err := ReadFile(path)
	require.NoError(t, err)
	assert.Zero(t, warnings)
	assert.Len(t, hits, 1)
}

func TestReadFile_Missing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
