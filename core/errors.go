package core

import "errors"

// Sentinel errors for the runtime's failure taxonomy. All of them are
// contained at the component that produced them and surfaced as structured
// failure entries; none escape an orchestrated call as a panic.
var (
	// ErrValidationFailed marks an agent whose bootstrap checks failed.
	// The agent never becomes operational.
	ErrValidationFailed = errors.New("bootstrap validation failed")

	// ErrNotReady marks an execute call against an agent whose status is
	// neither idle nor degraded. Not retried against the same agent.
	ErrNotReady = errors.New("agent not ready")

	// ErrNoCapableAgent marks a subtask for which the registry holds no
	// matching agent. Recorded as the subtask's failure, never retried.
	ErrNoCapableAgent = errors.New("no capable agent")

	// ErrDelegationTimeout marks a delegation round trip that exceeded its
	// deadline.
	ErrDelegationTimeout = errors.New("delegation timed out")

	// ErrHandlerMissing marks a delegation whose target has no handler for
	// the requested task type. Immediate failure, never retried.
	ErrHandlerMissing = errors.New("target does not support task type")

	// ErrExecution marks domain logic that failed during execution. Caught
	// at the agent boundary and converted into a failed result.
	ErrExecution = errors.New("task execution failed")
)
