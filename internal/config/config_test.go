package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "historical_customers.csv", cfg.Data.HistoricalPath)
	assert.True(t, cfg.Analysis.Enabled)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Analysis.Model)
	assert.Equal(t, int64(2000), cfg.Analysis.MaxTokens)
	assert.Equal(t, 3600, cfg.Cache.TTLSecs)
	assert.Equal(t, 5, cfg.Cache.AgeBucketYears)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRICING_SERVER_PORT", "9090")
	t.Setenv("PRICING_ANALYSIS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Analysis.Enabled)
}

func TestValidateRequiresKeyWhenEnabled(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())

	cfg.Analysis.Key = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.Analysis.Key = ""
	cfg.Analysis.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{
		Cache:  CacheConfig{TTLSecs: 3600},
		Server: ServerConfig{Port: 0},
	}
	assert.Error(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	a := AnalysisConfig{TimeoutSecs: 30}
	assert.Equal(t, "30s", a.Timeout().String())

	c := CacheConfig{TTLSecs: 3600}
	assert.Equal(t, "1h0m0s", c.TTL().String())
}

// chdir changes into dir for the duration of the test, mirroring the
// behavior of testing.T.Chdir (added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
