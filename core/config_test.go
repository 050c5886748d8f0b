package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"negative backoff", func(c *Config) { c.RetryBackoff = -time.Second }},
		{"backoff factor below one", func(c *Config) { c.BackoffFactor = 0.5 }},
		{"zero delegation timeout", func(c *Config) { c.DelegationTimeout = 0 }},
		{"zero self-test timeout", func(c *Config) { c.SelfTestTimeout = 0 }},
		{"zero degraded threshold", func(c *Config) { c.DegradedThreshold = 0 }},
		{"error rate above one", func(c *Config) { c.HealthMaxErrorRate = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
