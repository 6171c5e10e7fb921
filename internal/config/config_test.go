package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stepflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
log:
  level: debug
simulation:
  step_pause: 10ms
  max_delay: 2s
  seed: 42
`)

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulation.StepPause)
	assert.Equal(t, time.Second, cfg.Simulation.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.Simulation.MaxDelay)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, ".stepflow", cfg.Store.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("STEPFLOW_LOG_LEVEL", "warn")
	t.Setenv("STEPFLOW_STORE_DIR", "/tmp/flows")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/flows", cfg.Store.Dir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"json format", func(c *Config) { c.Log.Format = "JSON" }, false},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"inverted delays", func(c *Config) { c.Simulation.MaxDelay = time.Millisecond }, true},
		{"negative pause", func(c *Config) { c.Simulation.StepPause = -time.Second }, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			if tc.wantErr {
				require.Error(t, cfg.Validate())
			} else {
				require.NoError(t, cfg.Validate())
			}
		})
	}
}
