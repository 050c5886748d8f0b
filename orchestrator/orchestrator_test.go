package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthive/hive/agent"
	"github.com/agenthive/hive/core"
	"github.com/agenthive/hive/decompose"
	"github.com/agenthive/hive/registry"
	"github.com/agenthive/hive/store"
)

func newWorker(t *testing.T, id string, capability core.Capability, run func(task core.Task) (map[string]any, error)) *agent.BaseAgent {
	t.Helper()
	a := agent.New(id, agent.ExecutorFunc(func(ctx context.Context, task core.Task) (map[string]any, error) {
		if task.Operation == core.SelfTestOperation {
			return map[string]any{"status": "ok"}, nil
		}
		return run(task)
	}), func(o *agent.Options) {
		o.Capabilities = []core.Capability{capability}
	})
	require.True(t, a.Initialize(context.Background()))
	return a
}

func newOrchestrator(t *testing.T, reg *registry.Registry, optFns ...func(o *Options)) *Orchestrator {
	t.Helper()
	o := New(reg, decompose.New(), optFns...)
	require.True(t, o.Initialize(context.Background()))
	return o
}

func TestOrchestratorBootstrapsWithEmptyRegistry(t *testing.T) {
	o := New(registry.New(), decompose.New())
	assert.True(t, o.Initialize(context.Background()))
	assert.Equal(t, core.StatusIdle, o.Status())
	assert.Equal(t, "orchestrator", o.Type())
}

func TestPipelineResolvesUpstreamResults(t *testing.T) {
	reg := registry.New()
	reg.Register(newWorker(t, "extractor", core.CapabilityExtract, func(task core.Task) (map[string]any, error) {
		return map[string]any{"rows": []any{"a", "b", "c"}}, nil
	}))

	var transformSaw any
	reg.Register(newWorker(t, "transformer", core.CapabilityTransform, func(task core.Task) (map[string]any, error) {
		transformSaw = task.Parameters["extract"]
		return map[string]any{"count": 3}, nil
	}))

	var loadSaw any
	reg.Register(newWorker(t, "loader", core.CapabilityLoad, func(task core.Task) (map[string]any, error) {
		loadSaw = task.Parameters["transform"]
		return map[string]any{"loaded": true}, nil
	}))
	reg.Register(newWorker(t, "validator", core.CapabilityValidate, func(task core.Task) (map[string]any, error) {
		return map[string]any{"valid": true}, nil
	}))

	o := newOrchestrator(t, reg)
	out := o.Submit(context.Background(), core.Task{
		ID:         "t1",
		Operation:  "etl_pipeline",
		Parameters: map[string]any{"source": "s3://x"},
	})

	assert.Equal(t, core.StatusCompleted, out.Status)
	assert.Equal(t, 4, out.SubtaskCount)
	assert.Equal(t, 4, out.Succeeded)
	assert.Equal(t, 1.0, out.SuccessRate)
	assert.Empty(t, out.Errors)

	// The transformer received the extractor's whole payload, resolved from
	// the dependency reference before dispatch.
	assert.Equal(t, map[string]any{"rows": []any{"a", "b", "c"}}, transformSaw)
	assert.Equal(t, map[string]any{"count": 3}, loadSaw)

	// Merged payload carries the later stages' fields.
	assert.Equal(t, true, out.Result["valid"])
	assert.Equal(t, true, out.Result["loaded"])
}

func TestGenerationRunsConcurrently(t *testing.T) {
	const nap = 80 * time.Millisecond

	reg := registry.New()
	sleepy := func(task core.Task) (map[string]any, error) {
		time.Sleep(nap)
		return map[string]any{"ok": true}, nil
	}
	reg.Register(newWorker(t, "generator", core.CapabilityGenerate, sleepy))
	reg.Register(newWorker(t, "profiler", core.CapabilityProfile, sleepy))
	reg.Register(newWorker(t, "validator", core.CapabilityValidate, func(task core.Task) (map[string]any, error) {
		return map[string]any{"valid": true}, nil
	}))

	o := newOrchestrator(t, reg)
	start := time.Now()
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "synthesize_dataset"})
	elapsed := time.Since(start)

	assert.Equal(t, core.StatusCompleted, out.Status)
	// generate and profile share a generation, so the wall clock tracks the
	// slowest of the two rather than their sum.
	assert.Less(t, elapsed, 2*nap, "generation did not run concurrently")
}

func TestMissingCapabilityYieldsPartialOutcome(t *testing.T) {
	reg := registry.New()
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		return map[string]any{"entropy": 4.2}, nil
	}))
	reg.Register(newWorker(t, "compressor", core.CapabilityCompress, func(task core.Task) (map[string]any, error) {
		return map[string]any{"ratio": 0.4}, nil
	}))
	// No verify agent registered.

	o := newOrchestrator(t, reg)
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "compress_corpus"})

	assert.Equal(t, core.StatusPartial, out.Status)
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "t1-verify", out.Errors[0].SubtaskID)
	assert.Contains(t, out.Errors[0].Message, core.ErrNoCapableAgent.Error())

	// Successful stages still contribute to the merged payload.
	assert.Equal(t, 0.4, out.Result["ratio"])
}

func TestDirectRoutingForSimpleOperations(t *testing.T) {
	reg := registry.New()
	var calls int32
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]any{"entropy": 4.2, "topic": task.Parameters["topic"]}, nil
	}))

	o := newOrchestrator(t, reg)
	out := o.Submit(context.Background(), core.Task{
		ID:         "t1",
		Operation:  "analyze",
		Parameters: map[string]any{"topic": "logs"},
	})

	assert.Equal(t, core.StatusCompleted, out.Status)
	assert.Equal(t, 1, out.SubtaskCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 4.2, out.Result["entropy"])
	assert.Equal(t, "logs", out.Result["topic"])
}

func TestDirectRoutingWithoutAgentFails(t *testing.T) {
	o := newOrchestrator(t, registry.New())
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	assert.Equal(t, core.StatusFailed, out.Status)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0].Message, core.ErrNoCapableAgent.Error())
}

func TestSubtaskRetrySucceedsAfterTransientFailure(t *testing.T) {
	reg := registry.New()
	var attempts int32
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("transient")
		}
		return map[string]any{"ok": true}, nil
	}))

	o := newOrchestrator(t, reg, func(o *Options) {
		o.Config = core.DefaultConfig
		o.Config.MaxRetries = 2
		o.Config.RetryBackoff = time.Millisecond
	})
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	assert.Equal(t, core.StatusCompleted, out.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestSubtaskRetryExhaustion(t *testing.T) {
	reg := registry.New()
	var attempts int32
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("permanent")
	}))

	o := newOrchestrator(t, reg, func(o *Options) {
		o.Config = core.DefaultConfig
		o.Config.MaxRetries = 2
		o.Config.RetryBackoff = time.Millisecond
	})
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	assert.Equal(t, core.StatusFailed, out.Status)
	// First attempt plus two retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestCyclicTemplateIsFatal(t *testing.T) {
	dec := decompose.New()
	dec.RegisterTemplate(decompose.Template{
		Operation: "tangled",
		Stages: []decompose.Stage{
			{Name: "a", Type: core.CapabilityGeneral, DependsOn: []string{"b"}},
			{Name: "b", Type: core.CapabilityGeneral, DependsOn: []string{"a"}},
		},
	})

	o := New(registry.New(), dec)
	require.True(t, o.Initialize(context.Background()))

	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "tangled"})

	assert.Equal(t, core.StatusFailed, out.Status)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0].Message, decompose.ErrCycle.Error())

	metrics := o.ReportMetrics()
	assert.Equal(t, 1, metrics.TasksRouted)
	assert.Equal(t, 1, metrics.TasksFailed)
}

func TestReportMetricsAndHistory(t *testing.T) {
	reg := registry.New()
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}))

	o := newOrchestrator(t, reg)
	o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})
	o.Submit(context.Background(), core.Task{ID: "t2", Operation: "compress_corpus"})

	metrics := o.ReportMetrics()
	assert.Equal(t, 2, metrics.TasksRouted)
	assert.Equal(t, 1, metrics.TasksCompleted)
	assert.Equal(t, 1, metrics.TasksFailed)
	assert.Equal(t, 0.5, metrics.SuccessRate)

	history := o.CoordinationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "analyze", history[0].Operation)
	assert.True(t, history[0].Success)
	assert.Equal(t, "compress_corpus", history[1].Operation)
	assert.False(t, history[1].Success)
}

func TestRunRecordsArePersisted(t *testing.T) {
	reg := registry.New()
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}))

	runs := store.NewInMemoryStore()
	o := newOrchestrator(t, reg, func(o *Options) {
		o.Store = runs
	})
	o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	records, err := runs.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].TaskID)
	assert.Equal(t, "analyze", records[0].Operation)
	assert.Equal(t, string(core.StatusCompleted), records[0].Status)
	assert.Equal(t, 1, records[0].SubtaskCount)
}

func TestSelectAgentPrefersHealthyCandidate(t *testing.T) {
	reg := registry.New()

	broken := newWorker(t, "broken", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		panic("wedged")
	})
	reg.Register(broken)
	reg.Register(newWorker(t, "healthy", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		return map[string]any{"agent": "healthy"}, nil
	}))

	// Drive the first agent into the error state.
	broken.Execute(context.Background(), core.Task{ID: "warm", Operation: "analyze"})
	require.Equal(t, core.StatusError, broken.Status())

	o := newOrchestrator(t, reg)
	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	assert.Equal(t, core.StatusCompleted, out.Status)
	assert.Equal(t, "healthy", out.Result["agent"])
}

func TestSubmitThroughAgentLifecycle(t *testing.T) {
	reg := registry.New()
	reg.Register(newWorker(t, "analyzer", core.CapabilityAnalyze, func(task core.Task) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}))

	o := newOrchestrator(t, reg)
	o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})

	// The orchestrator's own BaseAgent history tracks the submission.
	assert.Equal(t, 1, o.TaskCount())
	assert.Equal(t, 1, o.SuccessCount())
	assert.Equal(t, core.StatusIdle, o.Status())
}

func TestSubmitAfterShutdownFails(t *testing.T) {
	o := newOrchestrator(t, registry.New())
	require.NoError(t, o.Shutdown(context.Background()))

	out := o.Submit(context.Background(), core.Task{ID: "t1", Operation: "analyze"})
	assert.Equal(t, core.StatusFailed, out.Status)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0].Message, core.ErrNotReady.Error())
}
