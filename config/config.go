// Package config loads runtime configuration from YAML with environment
// overrides. All fields have working defaults, so an empty file and a
// missing file are both valid configurations.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agenthive/hive/core"
)

// Duration wraps time.Duration with YAML decoding of the usual string
// forms ("5s", "100ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// RuntimeConfig carries the orchestration thresholds surfaced to core.
type RuntimeConfig struct {
	MaxRetries         int      `yaml:"max_retries"`
	RetryBackoff       Duration `yaml:"retry_backoff"`
	BackoffFactor      float64  `yaml:"backoff_factor"`
	DelegationTimeout  Duration `yaml:"delegation_timeout"`
	SelfTestTimeout    Duration `yaml:"self_test_timeout"`
	DegradedThreshold  int      `yaml:"degraded_threshold"`
	HealthMinTasks     int      `yaml:"health_min_tasks"`
	HealthMaxErrorRate float64  `yaml:"health_max_error_rate"`
}

// StoreConfig selects the run-record store.
type StoreConfig struct {
	// Driver is memory or sqlite.
	Driver string `yaml:"driver"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// Config is the top-level runtime configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Store   StoreConfig   `yaml:"store"`
}

// Default returns the built-in configuration, mirroring core.DefaultConfig
// for the runtime thresholds.
func Default() Config {
	base := core.DefaultConfig
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Runtime: RuntimeConfig{
			MaxRetries:         base.MaxRetries,
			RetryBackoff:       Duration(base.RetryBackoff),
			BackoffFactor:      base.BackoffFactor,
			DelegationTimeout:  Duration(base.DelegationTimeout),
			SelfTestTimeout:    Duration(base.SelfTestTimeout),
			DegradedThreshold:  base.DegradedThreshold,
			HealthMinTasks:     base.HealthMinTasks,
			HealthMaxErrorRate: base.HealthMaxErrorRate,
		},
		Store: StoreConfig{Driver: "memory"},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error; a malformed one
// is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers HIVE_* environment variables over the loaded values.
// Unparseable values are ignored in favor of the file or default value.
func (c *Config) applyEnv() {
	if v := os.Getenv("HIVE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HIVE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("HIVE_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("HIVE_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("HIVE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Runtime.MaxRetries = n
		}
	}
	if v := os.Getenv("HIVE_DELEGATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Runtime.DelegationTimeout = Duration(d)
		}
	}
}

// Validate checks the configuration for values the runtime cannot work
// with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("sqlite store requires a path")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return c.CoreConfig().Validate()
}

// CoreConfig converts the runtime section to the core.Config the agents
// and orchestrator consume.
func (c *Config) CoreConfig() core.Config {
	return core.Config{
		MaxRetries:         c.Runtime.MaxRetries,
		RetryBackoff:       time.Duration(c.Runtime.RetryBackoff),
		BackoffFactor:      c.Runtime.BackoffFactor,
		DelegationTimeout:  time.Duration(c.Runtime.DelegationTimeout),
		SelfTestTimeout:    time.Duration(c.Runtime.SelfTestTimeout),
		DegradedThreshold:  c.Runtime.DegradedThreshold,
		HealthMinTasks:     c.Runtime.HealthMinTasks,
		HealthMaxErrorRate: c.Runtime.HealthMaxErrorRate,
	}
}
