// Package agent provides BaseAgent, the embeddable lifecycle implementation
// behind every agent in the runtime. BaseAgent runs the bootstrap-validate
// gate, enforces the status machine around task execution, keeps the
// performance history and counters, and derives self-evaluations and health
// reports from them. Domain behavior is supplied as an Executor.
package agent
