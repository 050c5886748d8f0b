package core

import (
	"fmt"
	"time"
)

// Config carries the tuning parameters the embedding application passes
// into the runtime. Nothing here is hard-coded downstream: retry policy,
// delegation timeouts and health thresholds all flow from this value.
type Config struct {
	// MaxRetries bounds how often a failed subtask execution is retried.
	// Zero disables retries; the first attempt always runs.
	MaxRetries int

	// RetryBackoff is the delay before the first retry.
	RetryBackoff time.Duration

	// BackoffFactor multiplies the backoff delay after each retry.
	BackoffFactor float64

	// DelegationTimeout bounds a single delegation round trip when the
	// caller does not supply an explicit timeout.
	DelegationTimeout time.Duration

	// SelfTestTimeout bounds the bootstrap self-test invocation.
	SelfTestTimeout time.Duration

	// DegradedThreshold is the consecutive-failure count at which a
	// working agent transitions to degraded instead of idle.
	DegradedThreshold int

	// HealthMinTasks is the task count above which the error-rate health
	// check applies.
	HealthMinTasks int

	// HealthMaxErrorRate is the error rate beyond which an agent with
	// more than HealthMinTasks tasks reports unhealthy.
	HealthMaxErrorRate float64
}

// DefaultConfig provides conservative defaults safe for local development
// and tests. Embedding applications typically load their own values via
// the config package.
var DefaultConfig = Config{
	MaxRetries:         2,
	RetryBackoff:       100 * time.Millisecond,
	BackoffFactor:      2.0,
	DelegationTimeout:  5 * time.Second,
	SelfTestTimeout:    2 * time.Second,
	DegradedThreshold:  3,
	HealthMinTasks:     10,
	HealthMaxErrorRate: 0.5,
}

// Validate reports the first structural problem with the configuration.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff must not be negative, got %s", c.RetryBackoff)
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("backoff factor must be at least 1, got %g", c.BackoffFactor)
	}
	if c.DelegationTimeout <= 0 {
		return fmt.Errorf("delegation timeout must be positive, got %s", c.DelegationTimeout)
	}
	if c.SelfTestTimeout <= 0 {
		return fmt.Errorf("self-test timeout must be positive, got %s", c.SelfTestTimeout)
	}
	if c.DegradedThreshold < 1 {
		return fmt.Errorf("degraded threshold must be at least 1, got %d", c.DegradedThreshold)
	}
	if c.HealthMaxErrorRate < 0 || c.HealthMaxErrorRate > 1 {
		return fmt.Errorf("health error rate must be within [0,1], got %g", c.HealthMaxErrorRate)
	}
	return nil
}
