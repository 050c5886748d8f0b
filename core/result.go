package core

import "time"

// ExecutionResult is the terminal outcome of one subtask (or one directly
// routed task) on one agent.
type ExecutionResult struct {
	SubtaskID string
	AgentID   string
	Success   bool
	Result    map[string]any
	Error     string
	Duration  time.Duration
}

// OverallStatus classifies an aggregate outcome.
type OverallStatus string

const (
	// StatusCompleted means every subtask succeeded.
	StatusCompleted OverallStatus = "completed"
	// StatusPartial means some subtasks succeeded and some failed.
	StatusPartial OverallStatus = "partial"
	// StatusFailed means no subtask succeeded.
	StatusFailed OverallStatus = "failed"
)

// SubtaskError itemizes one failed subtask in an aggregate outcome.
type SubtaskError struct {
	SubtaskID string
	Message   string
}

// AggregateResult merges the per-subtask outcomes of one orchestrated call.
//
// Status is "completed" iff zero failures, "failed" iff zero successes and
// "partial" otherwise. Result is the shallow merge of successful subtasks'
// payloads in topological order, so in a linear pipeline it carries the
// final stage's output.
type AggregateResult struct {
	Status          OverallStatus
	SubtaskCount    int
	Succeeded       int
	Failed          int
	SuccessRate     float64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	Result          map[string]any
	Errors          []SubtaskError
}

// Classify returns the overall status for the given success/failure counts.
func Classify(succeeded, failed int) OverallStatus {
	switch {
	case failed == 0:
		return StatusCompleted
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
