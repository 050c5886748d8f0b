package core

import (
	"context"
	"time"
)

// Agent is the contract every unit of work in the runtime implements.
//
// An agent is created, bootstrap-validated exactly once via Initialize and,
// if validation passes, accepts tasks through Execute until Shutdown. All
// methods must be safe for concurrent use: the orchestrator executes agents
// from concurrent generations and health sweeps read counters at any time.
type Agent interface {
	// ID returns the unique identifier the agent is registered under.
	ID() string

	// Type categorizes the implementation (e.g. "worker", "orchestrator").
	Type() string

	// Status returns the agent's current lifecycle status.
	Status() AgentStatus

	// Capabilities returns the declared capability set.
	Capabilities() []Capability

	// CanHandle reports whether the agent can execute work of the given
	// capability under the supplied requirements.
	CanHandle(capability Capability, req Requirements) bool

	// BootstrapAndValidate runs the named validation checks. Success of
	// the returned result is the strict AND over all checks.
	BootstrapAndValidate(ctx context.Context) *BootstrapResult

	// Initialize invokes bootstrap validation and transitions to idle on
	// success or error on failure, reporting which happened.
	Initialize(ctx context.Context) bool

	// Execute runs one task through the agent's domain logic, recording
	// performance history and counters. Calls while the agent is neither
	// idle nor degraded fail immediately without mutating counters.
	Execute(ctx context.Context, task Task) ExecutionResult

	// SelfEvaluate derives strengths, weaknesses and suggestions from the
	// agent's accumulated performance history.
	SelfEvaluate() Evaluation

	// HealthCheck reports whether the agent should keep receiving work.
	HealthCheck() HealthReport

	// Shutdown flushes a final metrics snapshot and transitions to the
	// terminal state. Idempotent.
	Shutdown(ctx context.Context) error
}

// PerformanceRecord is one entry of an agent's append-only task log.
type PerformanceRecord struct {
	TaskID    string
	Operation string
	Duration  time.Duration
	Success   bool
	Timestamp time.Time
}

// Evaluation is the outcome of an agent's self-assessment.
type Evaluation struct {
	Score           float64
	AverageDuration time.Duration
	Strengths       []string
	Weaknesses      []string
	Suggestions     []string
}

// HealthReport summarizes an agent's fitness for further work.
type HealthReport struct {
	Healthy   bool
	Status    AgentStatus
	TaskCount int
	ErrorRate float64
}
