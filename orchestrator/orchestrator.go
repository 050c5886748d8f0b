package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenthive/hive/agent"
	"github.com/agenthive/hive/core"
	"github.com/agenthive/hive/decompose"
	"github.com/agenthive/hive/logging"
	"github.com/agenthive/hive/registry"
	"github.com/agenthive/hive/store"
)

// Outcome is the boundary result of one submitted task.
type Outcome struct {
	TaskID    string
	Operation string
	core.AggregateResult
}

// CoordinationRecord is one entry of the orchestrator's own task history,
// distinct from the per-subtask performance history of worker agents.
type CoordinationRecord struct {
	Operation    string
	SubtaskCount int
	Success      bool
	Timestamp    time.Time
}

// Metrics summarizes the orchestrator's routing counters.
type Metrics struct {
	TasksRouted    int
	TasksCompleted int
	TasksFailed    int
	SuccessRate    float64
}

// Options configures an Orchestrator.
type Options struct {
	// ID overrides the generated orchestrator agent id.
	ID string
	// Config supplies retry, backoff and health thresholds.
	Config core.Config
	// Logger receives coordination events. Defaults to NoOp.
	Logger logging.Logger
	// Store, when set, receives one run record per submitted task.
	Store store.Store
}

// Orchestrator coordinates generation-based concurrent execution. It
// embeds a BaseAgent, so it carries the same bootstrap-validate lifecycle,
// status machine and performance history as the agents it schedules.
type Orchestrator struct {
	*agent.BaseAgent

	registry   *registry.Registry
	decomposer *decompose.Decomposer
	cfg        core.Config
	logger     logging.Logger
	runStore   store.Store

	mu        sync.Mutex
	routed    int
	completed int
	failed    int
	history   []CoordinationRecord
}

// New creates an orchestrator over the given registry and decomposer. The
// returned orchestrator still needs Initialize before accepting work, like
// any other agent.
func New(reg *registry.Registry, dec *decompose.Decomposer, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		ID:     "orchestrator-" + uuid.NewString()[:8],
		Config: core.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	o := &Orchestrator{
		registry:   reg,
		decomposer: dec,
		cfg:        opts.Config,
		logger:     opts.Logger,
		runStore:   opts.Store,
	}
	o.BaseAgent = agent.New(opts.ID, o, func(ao *agent.Options) {
		ao.Type = "orchestrator"
		ao.Capabilities = []core.Capability{core.CapabilityOrchestrate}
		ao.Config = opts.Config
		ao.Logger = opts.Logger
	})
	return o
}

// Submit runs one task through the orchestrator's agent lifecycle and
// returns the aggregate outcome. The call always returns, bounded by the
// configured timeouts; partial and failed outcomes carry an itemized error
// list keyed by subtask id.
func (o *Orchestrator) Submit(ctx context.Context, task core.Task) *Outcome {
	res := o.Execute(ctx, task)
	if out, ok := res.Result[outcomeKey].(*Outcome); ok {
		return out
	}

	// The run never produced an outcome: the orchestrator was not ready,
	// or the dependency graph was cyclic.
	return &Outcome{
		TaskID:    task.ID,
		Operation: task.Operation,
		AggregateResult: core.AggregateResult{
			Status: core.StatusFailed,
			Errors: []core.SubtaskError{{SubtaskID: task.ID, Message: res.Error}},
		},
	}
}

// outcomeKey carries the typed outcome through the agent execution
// boundary, whose payloads are plain maps.
const outcomeKey = "outcome"

// ExecuteTask implements agent.Executor: it is the orchestrator's own
// domain logic, invoked through the BaseAgent status machine.
func (o *Orchestrator) ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error) {
	if task.Operation == core.SelfTestOperation {
		return map[string]any{"status": "ok"}, nil
	}

	out, err := o.run(ctx, task)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		outcomeKey:      out,
		"status":        string(out.Status),
		"result":        out.Result,
		"subtask_count": out.SubtaskCount,
		"success_rate":  out.SuccessRate,
	}, nil
}

// run decomposes the task and either routes it directly or coordinates
// generation-based execution. The only error it returns is the fatal
// cyclic-graph condition; every other failure is folded into the outcome.
func (o *Orchestrator) run(ctx context.Context, task core.Task) (*Outcome, error) {
	start := time.Now()

	o.mu.Lock()
	o.routed++
	o.mu.Unlock()

	subtasks, graph := o.decomposer.Decompose(task)

	generations, err := decompose.Generations(graph)
	if err != nil {
		o.mu.Lock()
		o.failed++
		o.history = append(o.history, CoordinationRecord{
			Operation:    task.Operation,
			SubtaskCount: len(subtasks),
			Timestamp:    start,
		})
		o.mu.Unlock()
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	var agg core.AggregateResult
	if len(subtasks) == 1 && len(graph[subtasks[0].ID]) == 0 {
		agg = o.routeDirect(ctx, subtasks[0])
	} else {
		results := o.coordinateExecution(ctx, subtasks, generations)
		agg = aggregateResults(generations, results)
	}

	out := &Outcome{TaskID: task.ID, Operation: task.Operation, AggregateResult: agg}

	o.mu.Lock()
	switch agg.Status {
	case core.StatusCompleted:
		o.completed++
	case core.StatusFailed:
		o.failed++
	}
	o.history = append(o.history, CoordinationRecord{
		Operation:    task.Operation,
		SubtaskCount: agg.SubtaskCount,
		Success:      agg.Status == core.StatusCompleted,
		Timestamp:    start,
	})
	o.mu.Unlock()

	o.recordRun(ctx, task, out, time.Since(start))
	o.logger.Info("task coordinated",
		"task_id", task.ID, "operation", task.Operation,
		"status", string(agg.Status), "subtasks", agg.SubtaskCount,
		"duration", time.Since(start))

	return out, nil
}

// routeDirect executes a simple task on one capability-matched agent and
// wraps its result as a single-subtask aggregate.
func (o *Orchestrator) routeDirect(ctx context.Context, st core.Subtask) core.AggregateResult {
	res := o.executeSubtask(ctx, st, nil)

	agg := core.AggregateResult{
		SubtaskCount:    1,
		TotalDuration:   res.Duration,
		AverageDuration: res.Duration,
		Result:          res.Result,
	}
	if res.Success {
		agg.Status = core.StatusCompleted
		agg.Succeeded = 1
		agg.SuccessRate = 1
	} else {
		agg.Status = core.StatusFailed
		agg.Failed = 1
		agg.Errors = []core.SubtaskError{{SubtaskID: res.SubtaskID, Message: res.Error}}
	}
	return agg
}

// coordinateExecution dispatches each generation's subtasks concurrently
// and joins the generation before starting the next. Only the coordinator
// writes to the shared results map: executors return their outcome over a
// channel, and the merge happens between generations, so resolution inside
// generation k reads a map no goroutine is mutating.
func (o *Orchestrator) coordinateExecution(ctx context.Context, subtasks []core.Subtask, generations [][]string) map[string]core.ExecutionResult {
	byID := make(map[string]core.Subtask, len(subtasks))
	for _, st := range subtasks {
		byID[st.ID] = st
	}

	results := make(map[string]core.ExecutionResult, len(subtasks))
	for _, generation := range generations {
		resCh := make(chan core.ExecutionResult, len(generation))

		var wg sync.WaitGroup
		for _, id := range generation {
			st, ok := byID[id]
			if !ok {
				continue
			}
			wg.Add(1)
			go func(st core.Subtask) {
				defer wg.Done()
				resCh <- o.executeSubtask(ctx, st, results)
			}(st)
		}
		wg.Wait()
		close(resCh)

		for res := range resCh {
			results[res.SubtaskID] = res
		}
	}
	return results
}

// executeSubtask resolves the subtask's inputs, selects an agent and runs
// it with bounded retry. A missing capability match fails immediately with
// no retry; an agent that reports not-ready is not retried either, since
// the condition is not transient within one generation.
func (o *Orchestrator) executeSubtask(ctx context.Context, st core.Subtask, completed map[string]core.ExecutionResult) core.ExecutionResult {
	input := resolveInputs(st.Input, completed)

	candidates := o.registry.FindByCapability(st.Type, st.Requirements)
	if len(candidates) == 0 {
		res := core.ExecutionResult{
			SubtaskID: st.ID,
			Error:     fmt.Sprintf("%v: capability %q", core.ErrNoCapableAgent, st.Type),
		}
		o.logger.Warn("no capable agent", "subtask_id", st.ID, "capability", string(st.Type))
		return res
	}
	worker := selectAgent(candidates)

	task := core.Task{ID: st.ID, Operation: string(st.Type), Parameters: input}

	var res core.ExecutionResult
	backoff := o.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		res = worker.Execute(ctx, task)
		if res.Success ||
			attempt >= o.cfg.MaxRetries ||
			strings.HasPrefix(res.Error, core.ErrNotReady.Error()) {
			break
		}

		o.logger.Debug("retrying subtask",
			"subtask_id", st.ID, "agent_id", worker.ID(), "attempt", attempt+1, "backoff", backoff)
		select {
		case <-ctx.Done():
			res.SubtaskID = st.ID
			res.Error = fmt.Sprintf("cancelled while retrying: %v", ctx.Err())
			return res
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * o.cfg.BackoffFactor)
	}

	res.SubtaskID = st.ID
	return res
}

// selectAgent prefers the first operational, healthy candidate and falls
// back to the first candidate so the not-ready failure is at least
// attributed to a concrete agent.
func selectAgent(candidates []core.Agent) core.Agent {
	for _, candidate := range candidates {
		if candidate.Status().Operational() && candidate.HealthCheck().Healthy {
			return candidate
		}
	}
	return candidates[0]
}

// CoordinationHistory returns a copy of the orchestrator's own task log.
func (o *Orchestrator) CoordinationHistory() []CoordinationRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	history := make([]CoordinationRecord, len(o.history))
	copy(history, o.history)
	return history
}

// ReportMetrics returns routing counters and the derived success rate.
func (o *Orchestrator) ReportMetrics() Metrics {
	o.mu.Lock()
	defer o.mu.Unlock()

	m := Metrics{
		TasksRouted:    o.routed,
		TasksCompleted: o.completed,
		TasksFailed:    o.failed,
	}
	if o.routed > 0 {
		m.SuccessRate = float64(o.completed) / float64(o.routed)
	}
	return m
}

func (o *Orchestrator) recordRun(ctx context.Context, task core.Task, out *Outcome, dur time.Duration) {
	if o.runStore == nil {
		return
	}
	rec := store.RunRecord{
		ID:           uuid.NewString(),
		TaskID:       task.ID,
		Operation:    task.Operation,
		Status:       string(out.Status),
		SubtaskCount: out.SubtaskCount,
		SuccessRate:  out.SuccessRate,
		Duration:     dur,
		CreatedAt:    time.Now(),
	}
	if err := o.runStore.SaveRun(ctx, rec); err != nil {
		o.logger.Warn("run record not persisted", "task_id", task.ID, "error", err.Error())
	}
}
