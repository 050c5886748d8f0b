// Package orchestrator drives the execution of submitted tasks. The
// Orchestrator is itself an agent: it consumes the registry and the
// decomposer to route simple tasks directly to one capability-matched
// agent, and to run composite tasks as dependency-respecting concurrent
// generations with per-subtask retry, dependency-reference resolution and
// result aggregation.
//
// All failures below a submission are contained and reported as structured
// entries of the aggregate outcome. The single fatal condition is a cyclic
// dependency graph, which aborts the call before any subtask runs.
package orchestrator
