package comm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthive/hive/core"
)

// KnowledgeEntry is one piece of shared knowledge received by a peer.
type KnowledgeEntry struct {
	Topic      string
	Content    any
	From       string
	ReceivedAt time.Time
}

// CollaborationMode selects how a collaboration fans out to participants.
type CollaborationMode string

const (
	// CollaborateParallel runs all participants concurrently.
	CollaborateParallel CollaborationMode = "parallel"
	// CollaborateSequential runs participants in order, threading prior
	// results into each subsequent request.
	CollaborateSequential CollaborationMode = "sequential"
)

// BroadcastResult collects the per-target responses of one broadcast.
type BroadcastResult struct {
	Responses map[string]Response
	Succeeded int
}

// Peer is an agent's attachment to the bus: its handler dispatch table,
// its caller-side relationship ledger and its received knowledge base.
type Peer struct {
	agent core.Agent
	bus   *Bus

	mu            sync.RWMutex
	handlers      map[TaskType]Handler
	relationships map[string]*core.Relationship
	knowledge     map[string]KnowledgeEntry
}

func newPeer(b *Bus, a core.Agent) *Peer {
	p := &Peer{
		agent:         a,
		bus:           b,
		handlers:      make(map[TaskType]Handler),
		relationships: make(map[string]*core.Relationship),
		knowledge:     make(map[string]KnowledgeEntry),
	}
	p.registerBuiltins()
	return p
}

// AgentID returns the id of the agent behind this peer.
func (p *Peer) AgentID() string { return p.agent.ID() }

// RegisterHandler installs (or replaces) the handler for a task type.
func (p *Peer) RegisterHandler(taskType TaskType, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[taskType] = h
}

func (p *Peer) handler(taskType TaskType) (Handler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.handlers[taskType]
	return h, ok
}

// Delegate hands a task of the given type to the target agent and waits
// for its response or the timeout, whichever comes first. A timeout of
// zero falls back to the bus's configured delegation timeout.
//
// A target without a handler for the task type fails immediately; this
// layer never retries. Every call, successful or not, updates this peer's
// relationship entry for the target.
func (p *Peer) Delegate(ctx context.Context, target string, taskType TaskType, params map[string]any, priority Priority, timeout time.Duration) Response {
	start := time.Now()

	fail := func(msg string) Response {
		elapsed := time.Since(start)
		p.recordInteraction(target, false, elapsed)
		p.bus.logger.Warn("delegation failed",
			"from", p.agent.ID(), "to", target, "task_type", string(taskType), "error", msg)
		return Response{From: target, Error: msg, Elapsed: elapsed}
	}

	targetPeer, ok := p.bus.Peer(target)
	if !ok {
		return fail(fmt.Sprintf("unknown agent %q", target))
	}

	h, ok := targetPeer.handler(taskType)
	if !ok {
		return fail(fmt.Sprintf("%v: %s has no handler for %q", core.ErrHandlerMissing, target, taskType))
	}

	if timeout <= 0 {
		timeout = p.bus.cfg.DelegationTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := Request{
		From:       p.agent.ID(),
		To:         target,
		Type:       taskType,
		Priority:   priority,
		Parameters: params,
	}

	type outcome struct {
		result map[string]any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := h(callCtx, req)
		done <- outcome{result, err}
	}()

	select {
	case <-callCtx.Done():
		// The handler goroutine drains into the buffered channel and exits
		// on its own; only this one call is cancelled.
		return fail(fmt.Sprintf("%v: no response from %s within %s", core.ErrDelegationTimeout, target, timeout))
	case out := <-done:
		elapsed := time.Since(start)
		if out.err != nil {
			p.recordInteraction(target, false, elapsed)
			return Response{From: target, Error: out.err.Error(), Elapsed: elapsed}
		}
		p.recordInteraction(target, true, elapsed)
		p.bus.logger.Debug("delegation completed",
			"from", p.agent.ID(), "to", target, "task_type", string(taskType), "elapsed", elapsed)
		return Response{From: target, Success: true, Result: out.result, Elapsed: elapsed}
	}
}

// Broadcast fans the delegation out to every target concurrently and
// collects the individual responses plus the count of successful ones.
func (p *Peer) Broadcast(ctx context.Context, taskType TaskType, params map[string]any, targets []string, timeout time.Duration) BroadcastResult {
	result := BroadcastResult{Responses: make(map[string]Response, len(targets))}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			resp := p.Delegate(ctx, target, taskType, params, PriorityNormal, timeout)
			mu.Lock()
			result.Responses[target] = resp
			if resp.Success {
				result.Succeeded++
			}
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return result
}

// Collaborate runs a shared task spec across the participants. In parallel
// mode all participants execute concurrently; in sequential mode they run
// in order and each request carries the accumulated prior results under
// the "previous" parameter. The initiator does the fan-out; each
// participant's built-in collaborate handler only executes locally.
func (p *Peer) Collaborate(ctx context.Context, participants []string, taskSpec map[string]any, mode CollaborationMode, timeout time.Duration) map[string]Response {
	if mode == CollaborateParallel {
		br := p.Broadcast(ctx, TaskTypeCollaborate, map[string]any{"task": taskSpec}, participants, timeout)
		return br.Responses
	}

	responses := make(map[string]Response, len(participants))
	previous := make(map[string]any)
	for _, target := range participants {
		params := map[string]any{"task": taskSpec}
		if len(previous) > 0 {
			params["previous"] = previous
		}
		resp := p.Delegate(ctx, target, TaskTypeCollaborate, params, PriorityNormal, timeout)
		responses[target] = resp
		if resp.Success {
			previous[target] = resp.Result
		}
	}
	return responses
}

// Relationship returns a copy of this peer's ledger entry for the target.
func (p *Peer) Relationship(target string) (core.Relationship, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rel, ok := p.relationships[target]
	if !ok {
		return core.Relationship{}, false
	}
	return *rel, true
}

// Knowledge returns the entry stored for a topic via share_knowledge.
func (p *Peer) Knowledge(topic string) (KnowledgeEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.knowledge[topic]
	return entry, ok
}

func (p *Peer) recordInteraction(target string, success bool, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rel, ok := p.relationships[target]
	if !ok {
		rel = &core.Relationship{}
		p.relationships[target] = rel
	}
	rel.RecordInteraction(success, elapsed)
}
