package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "best_hit", cfg.Assign.Method)
	assert.Equal(t, "blast", cfg.Assign.Tool)
	assert.Equal(t, 4, cfg.Assign.Workers)
	assert.InDelta(t, 70.0, cfg.Assign.MinIdentity, 0.001)
	assert.InDelta(t, 50.0, cfg.Assign.MinCoverage, 0.001)
	assert.InDelta(t, 1e-5, cfg.Assign.MaxEValue, 1e-12)
	assert.InDelta(t, 50.0, cfg.Assign.MinBitScore, 0.001)
	assert.Equal(t, 5, cfg.Assign.TopHits)
	assert.InDelta(t, 0.6, cfg.Assign.ConsensusFraction, 0.001)
	assert.InDelta(t, 90.0, cfg.Filter.MinIdentity, 0.001)
	assert.Equal(t, 50, cfg.Filter.MinLength)
	assert.True(t, cfg.Filter.RemoveSelfHits)
	assert.False(t, cfg.Filter.KeepBestHit)
	assert.Equal(t, "sqlite", cfg.Taxdb.Driver)
	assert.Equal(t, "taxassign.db", cfg.Taxdb.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
assign:
  method: lca
  workers: 8
taxdb:
  driver: postgres
  database_url: postgres://localhost/taxa
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lca", cfg.Assign.Method)
	assert.Equal(t, 8, cfg.Assign.Workers)
	assert.Equal(t, "postgres", cfg.Taxdb.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Assign.TopHits)
	assert.InDelta(t, 90.0, cfg.Filter.MinIdentity, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
assign:
  method: lca
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("TAXASSIGN_ASSIGN_METHOD", "consensus")
	t.Setenv("TAXASSIGN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "consensus", cfg.Assign.Method)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("TAXASSIGN_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestThresholdsConversion(t *testing.T) {
	ac := AssignConfig{
		MinIdentity:       97,
		MinCoverage:       80,
		MaxEValue:         1e-10,
		MinBitScore:       100,
		TopHits:           3,
		ConsensusFraction: 0.8,
		MinWeightShare:    0.7,
	}
	th := ac.Thresholds()
	assert.Equal(t, model.Thresholds{
		MinIdentity:       97,
		MinCoverage:       80,
		MaxEValue:         1e-10,
		MinBitScore:       100,
		TopHits:           3,
		ConsensusFraction: 0.8,
		MinWeightShare:    0.7,
	}, th)
}

func validDefaults() *Config {
	return &Config{
		Assign: AssignConfig{Method: "best_hit", Workers: 4},
		Taxdb:  TaxdbConfig{Driver: "sqlite", Path: "taxassign.db"},
		Server: ServerConfig{Port: 8080, RateLimit: 5, RateBurst: 10, MaxHits: 100000},
	}
}

func TestValidateAssign(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("assign"))

	cfg.Assign.Method = "magic"
	err := cfg.Validate("assign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assign.method")

	cfg = validDefaults()
	cfg.Assign.Workers = 0
	err = cfg.Validate("assign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assign.workers")
}

func TestValidateTaxdb(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("taxdb"))

	cfg.Taxdb = TaxdbConfig{Driver: "postgres"}
	err := cfg.Validate("taxdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taxdb.database_url")

	cfg.Taxdb = TaxdbConfig{Driver: "mysql"}
	err = cfg.Validate("taxdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taxdb.driver")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
