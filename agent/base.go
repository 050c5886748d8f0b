package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthive/hive/core"
	"github.com/agenthive/hive/logging"
)

// Executor supplies the domain-specific logic plugged into a BaseAgent.
// ExecuteTask must treat core.SelfTestOperation as a cheap probe and
// succeed on it; the bootstrap self-test invokes the same path real tasks
// travel through.
type Executor interface {
	ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task core.Task) (map[string]any, error)

// ExecuteTask implements Executor.
func (f ExecutorFunc) ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error) {
	return f(ctx, task)
}

// Closer is implemented by executors that hold resources needing cleanup
// on agent shutdown.
type Closer interface {
	Close(ctx context.Context) error
}

// Options configures a BaseAgent.
type Options struct {
	// Type categorizes the agent implementation. Defaults to "worker".
	Type string
	// Capabilities is the declared capability set. Bootstrap validation
	// fails when empty.
	Capabilities []core.Capability
	// Config supplies retry, timeout and health thresholds.
	Config core.Config
	// Logger receives lifecycle and execution events. Defaults to NoOp.
	Logger logging.Logger
}

// BaseAgent implements core.Agent around an Executor. All exported methods
// are safe for concurrent use: counters and history are mutated only under
// the agent's own mutex, satisfying the single-writer discipline the
// coordinator relies on when it reads them during health sweeps.
type BaseAgent struct {
	id        string
	agentType string
	caps      []core.Capability
	executor  Executor
	cfg       core.Config
	logger    logging.Logger

	mu           sync.Mutex
	status       core.AgentStatus
	taskCount    int
	successCount int
	errorCount   int
	failStreak   int
	history      []core.PerformanceRecord
}

// New constructs a BaseAgent in the initializing state. The agent accepts
// no work until Initialize has run its bootstrap validation.
func New(id string, executor Executor, optFns ...func(o *Options)) *BaseAgent {
	opts := Options{
		Type:   "worker",
		Config: core.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &BaseAgent{
		id:        id,
		agentType: opts.Type,
		caps:      opts.Capabilities,
		executor:  executor,
		cfg:       opts.Config,
		logger:    opts.Logger,
		status:    core.StatusInitializing,
	}
}

// ID returns the agent's unique identifier.
func (a *BaseAgent) ID() string { return a.id }

// Type returns the agent's implementation category.
func (a *BaseAgent) Type() string { return a.agentType }

// Status returns the agent's current lifecycle status.
func (a *BaseAgent) Status() core.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Capabilities returns a copy of the declared capability set.
func (a *BaseAgent) Capabilities() []core.Capability {
	caps := make([]core.Capability, len(a.caps))
	copy(caps, a.caps)
	return caps
}

// CanHandle reports whether the agent declares the capability and meets
// the supplied requirements. Agents with no task history are never
// excluded by a success-rate floor.
func (a *BaseAgent) CanHandle(capability core.Capability, req core.Requirements) bool {
	want := capability
	if req.Capability != "" {
		want = req.Capability
	}

	declared := false
	for _, c := range a.caps {
		if c == want {
			declared = true
			break
		}
	}
	if !declared {
		return false
	}

	if req.MinSuccessRate > 0 {
		a.mu.Lock()
		tasks, successes := a.taskCount, a.successCount
		a.mu.Unlock()
		if tasks > 0 && float64(successes)/float64(tasks) < req.MinSuccessRate {
			return false
		}
	}

	return true
}

// BootstrapAndValidate runs the agent's named validation checks:
// configuration validity, a non-empty capability set and a self-test
// invocation of the agent's own task-execution path. Success of the
// returned result is the strict AND over all checks.
func (a *BaseAgent) BootstrapAndValidate(ctx context.Context) *core.BootstrapResult {
	result := core.NewBootstrapResult()

	if err := a.cfg.Validate(); err != nil {
		result.Record("configuration", false)
		result.AddError(fmt.Sprintf("configuration invalid: %v", err))
	} else {
		result.Record("configuration", true)
	}

	if len(a.caps) == 0 {
		result.Record("capabilities", false)
		result.AddError("agent declares no capabilities")
	} else {
		result.Record("capabilities", true)
	}

	result.Record("self_test", a.runSelfTest(ctx, result))

	return result
}

// runSelfTest executes the probe task against the executor under the
// configured timeout, containing panics like the real execution path does.
func (a *BaseAgent) runSelfTest(ctx context.Context, result *core.BootstrapResult) (passed bool) {
	if a.executor == nil {
		result.AddError("agent has no executor")
		return false
	}

	timeout := a.cfg.SelfTestTimeout
	if timeout <= 0 {
		timeout = core.DefaultConfig.SelfTestTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result.AddError(fmt.Sprintf("self test panicked: %v", r))
			passed = false
		}
	}()

	probe := core.Task{
		ID:        a.id + "-selftest",
		Operation: core.SelfTestOperation,
	}
	if _, err := a.executor.ExecuteTask(probeCtx, probe); err != nil {
		result.AddError(fmt.Sprintf("self test failed: %v", err))
		return false
	}

	return true
}

// Initialize runs bootstrap validation, transitioning to idle on success
// or to error on failure. It reports which happened.
func (a *BaseAgent) Initialize(ctx context.Context) bool {
	a.mu.Lock()
	if !a.status.CanTransition(core.StatusValidating) {
		status := a.status
		a.mu.Unlock()
		a.logger.Warn("initialize called in unexpected state", "agent_id", a.id, "status", status.String())
		return status == core.StatusIdle
	}
	a.status = core.StatusValidating
	a.mu.Unlock()

	result := a.BootstrapAndValidate(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if result.Success() {
		a.status = core.StatusIdle
		a.logger.Info("agent validated", "agent_id", a.id, "checks", len(result.Checks))
		return true
	}

	a.status = core.StatusError
	a.logger.Error("agent validation failed",
		"agent_id", a.id, "errors", result.Errors, "warnings", result.Warnings)
	return false
}

// Execute runs one task through the agent's domain logic.
//
// Calls while the agent is neither idle nor degraded fail immediately and
// leave every counter untouched. Otherwise the agent moves to working,
// invokes the executor, appends a performance record, updates counters and
// returns to idle, or to degraded once the consecutive-failure streak
// crosses the configured threshold, or to error if the executor panicked.
func (a *BaseAgent) Execute(ctx context.Context, task core.Task) core.ExecutionResult {
	a.mu.Lock()
	if !a.status.Operational() {
		status := a.status
		a.mu.Unlock()
		return core.ExecutionResult{
			SubtaskID: task.ID,
			AgentID:   a.id,
			Error:     fmt.Sprintf("%v: agent %s has status %s", core.ErrNotReady, a.id, status),
		}
	}
	a.status = core.StatusWorking
	a.mu.Unlock()

	start := time.Now()
	payload, err, panicked := a.invokeExecutor(ctx, task)
	duration := time.Since(start)

	a.mu.Lock()
	defer a.mu.Unlock()

	success := err == nil
	a.taskCount++
	if success {
		a.successCount++
		a.failStreak = 0
	} else {
		a.errorCount++
		a.failStreak++
	}
	a.history = append(a.history, core.PerformanceRecord{
		TaskID:    task.ID,
		Operation: task.Operation,
		Duration:  duration,
		Success:   success,
		Timestamp: start,
	})

	switch {
	case panicked:
		a.status = core.StatusError
	case !success && a.failStreak >= a.cfg.DegradedThreshold:
		a.status = core.StatusDegraded
	default:
		a.status = core.StatusIdle
	}

	result := core.ExecutionResult{
		SubtaskID: task.ID,
		AgentID:   a.id,
		Success:   success,
		Result:    payload,
		Duration:  duration,
	}
	if err != nil {
		result.Error = err.Error()
		a.logger.Warn("task execution failed",
			"agent_id", a.id, "task_id", task.ID, "error", err.Error(), "status", a.status.String())
	}
	return result
}

// invokeExecutor contains executor panics, converting them into an
// execution error so a misbehaving domain implementation cannot take down
// a whole generation.
func (a *BaseAgent) invokeExecutor(ctx context.Context, task core.Task) (payload map[string]any, err error, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("%w: panic: %v", core.ErrExecution, r)
			panicked = true
		}
	}()
	payload, err = a.executor.ExecuteTask(ctx, task)
	if err != nil {
		err = fmt.Errorf("%w: %v", core.ErrExecution, err)
	}
	return payload, err, false
}

// SelfEvaluate derives a performance score and fixed-threshold strength,
// weakness and suggestion tags from the accumulated history.
func (a *BaseAgent) SelfEvaluate() core.Evaluation {
	a.mu.Lock()
	defer a.mu.Unlock()

	eval := core.Evaluation{}
	if a.taskCount == 0 {
		eval.Suggestions = append(eval.Suggestions, "no task history yet")
		return eval
	}

	eval.Score = float64(a.successCount) / float64(a.taskCount)

	var total time.Duration
	for _, rec := range a.history {
		total += rec.Duration
	}
	eval.AverageDuration = total / time.Duration(len(a.history))

	if eval.Score > 0.9 {
		eval.Strengths = append(eval.Strengths, "high success rate")
	}
	if eval.AverageDuration < time.Second {
		eval.Strengths = append(eval.Strengths, "fast execution")
	}
	if eval.Score < 0.7 {
		eval.Weaknesses = append(eval.Weaknesses, "low success rate")
	}
	if a.errorCount > 10 {
		eval.Weaknesses = append(eval.Weaknesses, "high error count")
	}
	if eval.Score < 0.9 {
		eval.Suggestions = append(eval.Suggestions, "improve error handling")
	}

	return eval
}

// HealthCheck reports unhealthy when the agent is in the error state or
// when its error rate exceeds the configured ceiling over a meaningful
// sample of tasks.
func (a *BaseAgent) HealthCheck() core.HealthReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := core.HealthReport{
		Status:    a.status,
		TaskCount: a.taskCount,
	}
	if a.taskCount > 0 {
		report.ErrorRate = float64(a.errorCount) / float64(a.taskCount)
	}

	report.Healthy = a.status != core.StatusError && a.status != core.StatusShutdown
	if a.taskCount > a.cfg.HealthMinTasks && report.ErrorRate > a.cfg.HealthMaxErrorRate {
		report.Healthy = false
	}
	return report
}

// Shutdown logs a final metrics snapshot, runs the executor's cleanup hook
// when it has one and moves to the terminal state. Safe to call more than
// once.
func (a *BaseAgent) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.status == core.StatusShutdown {
		a.mu.Unlock()
		return nil
	}
	a.status = core.StatusShutdown
	tasks, successes, errs := a.taskCount, a.successCount, a.errorCount
	a.mu.Unlock()

	a.logger.Info("agent shutting down",
		"agent_id", a.id, "tasks", tasks, "successes", successes, "errors", errs)

	if closer, ok := a.executor.(Closer); ok {
		if err := closer.Close(ctx); err != nil {
			return fmt.Errorf("executor cleanup for agent %s: %w", a.id, err)
		}
	}
	return nil
}

// TaskCount returns the number of tasks the agent has executed.
func (a *BaseAgent) TaskCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.taskCount
}

// SuccessCount returns the number of successfully executed tasks.
func (a *BaseAgent) SuccessCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.successCount
}

// ErrorCount returns the number of failed task executions.
func (a *BaseAgent) ErrorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errorCount
}

// History returns a copy of the agent's performance log.
func (a *BaseAgent) History() []core.PerformanceRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]core.PerformanceRecord, len(a.history))
	copy(history, a.history)
	return history
}
