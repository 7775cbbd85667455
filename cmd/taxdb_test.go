package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionspid/taxassign/internal/config"
)

func TestOpenStore_ValidatesConfig(t *testing.T) {
	cfg = defaultTestConfig()
	cfg.Taxdb = config.TaxdbConfig{Driver: "postgres"} // missing URL

	_, err := openStore(context.Background())
	assert.Error(t, err)
}

func TestLoadMapping_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.csv")
	require.NoError(t, os.WriteFile(path, []byte("subject_id,taxonomy\nS1,Bacteria\n"), 0644))

	src, err := loadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())
}

func TestTaxdbLoadAndStatus_SQLite(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("TAXASSIGN_TAXDB_PATH", filepath.Join(dir, "tax.db"))

	taxPath := filepath.Join(dir, "taxonomy.csv")
	require.NoError(t, os.WriteFile(taxPath, []byte(
		"subject_id,taxonomy\n"+
			"S1,Bacteria;Proteobacteria\n"+
			"S2,Archaea;Euryarchaeota\n"), 0644))

	rootCmd.SetArgs([]string{"taxdb", "load", "-i", taxPath})
	require.NoError(t, rootCmd.Execute())

	var out bytes.Buffer
	taxdbStatusCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"taxdb", "status"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "driver:   sqlite")
	assert.Contains(t, out.String(), "subjects: 2")
}
