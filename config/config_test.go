package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Runtime.MaxRetries)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Runtime.DelegationTimeout))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
runtime:
  max_retries: 5
  retry_backoff: 250ms
  delegation_timeout: 10s
store:
  driver: sqlite
  path: runs.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Runtime.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Runtime.RetryBackoff))
	assert.Equal(t, 10*time.Second, time.Duration(cfg.Runtime.DelegationTimeout))
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "runs.db", cfg.Store.Path)

	// Untouched fields keep their defaults.
	assert.Equal(t, 2.0, cfg.Runtime.BackoffFactor)
	assert.Equal(t, 3, cfg.Runtime.DegradedThreshold)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	t.Setenv("HIVE_LOG_LEVEL", "warn")
	t.Setenv("HIVE_MAX_RETRIES", "7")
	t.Setenv("HIVE_DELEGATION_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Runtime.MaxRetries)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.Runtime.DelegationTimeout))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "logging: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "runtime:\n  retry_backoff: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad store driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"negative retries", func(c *Config) { c.Runtime.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCoreConfigConversion(t *testing.T) {
	cfg := Default()
	cfg.Runtime.MaxRetries = 4
	cfg.Runtime.RetryBackoff = Duration(50 * time.Millisecond)

	coreCfg := cfg.CoreConfig()
	assert.Equal(t, 4, coreCfg.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, coreCfg.RetryBackoff)
	assert.Equal(t, 5*time.Second, coreCfg.DelegationTimeout)
	require.NoError(t, coreCfg.Validate())
}
