package core

// AgentStatus represents the lifecycle state of an agent.
//
// The legal transitions form a fixed machine:
//
//	INITIALIZING -> VALIDATING -> {IDLE, ERROR}
//	IDLE <-> WORKING <-> DEGRADED
//	any state -> SHUTDOWN (terminal)
type AgentStatus int

const (
	// StatusInitializing is the state of a freshly constructed agent.
	StatusInitializing AgentStatus = iota
	// StatusValidating indicates bootstrap validation is in progress.
	StatusValidating
	// StatusIdle indicates the agent is operational and accepting work.
	StatusIdle
	// StatusWorking indicates the agent is currently executing a task.
	StatusWorking
	// StatusDegraded indicates the agent is operational but has crossed its
	// consecutive-failure threshold. Degraded agents still accept work.
	StatusDegraded
	// StatusError indicates the agent failed bootstrap validation or
	// suffered an uncaught execution failure. Error agents accept no work.
	StatusError
	// StatusShutdown is the terminal state.
	StatusShutdown
)

// String returns the lowercase name of the status.
func (s AgentStatus) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusValidating:
		return "validating"
	case StatusIdle:
		return "idle"
	case StatusWorking:
		return "working"
	case StatusDegraded:
		return "degraded"
	case StatusError:
		return "error"
	case StatusShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// transitions maps each status to the set of statuses it may move to.
// Shutdown is reachable from every non-terminal state and is handled in
// CanTransition directly.
var transitions = map[AgentStatus][]AgentStatus{
	StatusInitializing: {StatusValidating},
	StatusValidating:   {StatusIdle, StatusError},
	StatusIdle:         {StatusWorking},
	StatusWorking:      {StatusIdle, StatusDegraded, StatusError},
	StatusDegraded:     {StatusWorking},
	StatusError:        {},
	StatusShutdown:     {},
}

// CanTransition reports whether moving from s to target is a legal
// lifecycle transition.
func (s AgentStatus) CanTransition(target AgentStatus) bool {
	if s == StatusShutdown {
		return false
	}
	if target == StatusShutdown {
		return true
	}
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Operational reports whether the agent may accept new work in this status.
func (s AgentStatus) Operational() bool {
	return s == StatusIdle || s == StatusDegraded
}
