package lineage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestResolver_KnownSubject(t *testing.T) {
	r := NewResolver(NewMapSource(map[string]string{
		"S1": "Bacteria;Proteobacteria;Escherichia coli",
	}))
	l := r.Resolve(context.Background(), "S1")
	assert.Equal(t, 3, l.Depth())
	assert.Equal(t, "Bacteria", l.Taxa[0])
	assert.Zero(t, r.Misses())
}

func TestResolver_MissFallsBackSynthetic(t *testing.T) {
	r := NewResolver(NewMapSource(nil))
	l := r.Resolve(context.Background(), "XYZ")
	assert.Equal(t, []string{"Subject_XYZ"}, l.Taxa)
	assert.Equal(t, 1, r.Misses())
}

func TestResolver_NilSource(t *testing.T) {
	r := NewResolver(nil)
	l := r.Resolve(context.Background(), "S1")
	assert.Equal(t, []string{"Subject_S1"}, l.Taxa)
}

func TestResolver_CachesLookups(t *testing.T) {
	src := &countingSource{entries: map[string]string{"S1": "Bacteria"}}
	r := NewResolver(src)

	ctx := context.Background()
	first := r.Resolve(ctx, "S1")
	second := r.Resolve(ctx, "S1")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	// Misses are cached too.
	r.Resolve(ctx, "S2")
	r.Resolve(ctx, "S2")
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 1, r.Misses())
}

func TestResolver_LookupErrorDegradesToSynthetic(t *testing.T) {
	r := NewResolver(&failingSource{})
	l := r.Resolve(context.Background(), "S1")
	assert.Equal(t, []string{"Subject_S1"}, l.Taxa)
}

func TestResolver_EmptyLineageStringIsMiss(t *testing.T) {
	r := NewResolver(NewMapSource(map[string]string{"S1": " ; ; "}))
	l := r.Resolve(context.Background(), "S1")
	assert.Equal(t, []string{"Subject_S1"}, l.Taxa)
}

type countingSource struct {
	entries map[string]string
	calls   int
}

func (s *countingSource) Lookup(_ context.Context, sid string) (string, bool, error) {
	s.calls++
	v, ok := s.entries[sid]
	return v, ok, nil
}

func (s *countingSource) Close() error { return nil }

type failingSource struct{}

func (s *failingSource) Lookup(context.Context, string) (string, bool, error) {
	return "", false, eris.New("backend gone")
}

func (s *failingSource) Close() error { return nil }

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	content := "subject_id,taxonomy\nS1,Bacteria;Proteobacteria;Escherichia coli\nS2,Bacteria;Firmicutes;Bacillus\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Len())

	raw, found, err := src.Lookup(context.Background(), "S2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Bacteria;Firmicutes;Bacillus", raw)
}

func TestLoadCSV_TSVByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.tsv")
	require.NoError(t, os.WriteFile(path, []byte("S1\tBacteria;Firmicutes\n"), 0o644))

	src, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())
}

func TestLoadCSV_MissingFileIsConfigurationError(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, model.IsConfiguration(err))
}

func TestLoadCSV_MalformedIsConfigurationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("just-one-column\n"), 0o644))

	_, err := LoadCSV(path)
	assert.True(t, model.IsConfiguration(err))
}
