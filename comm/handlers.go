package comm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agenthive/hive/core"
)

// maxGridCandidates caps the exhaustive search so a careless parameter
// space cannot stall the handler past its delegation timeout.
const maxGridCandidates = 512

// registerBuiltins installs the handlers every communicating agent exposes.
func (p *Peer) registerBuiltins() {
	p.handlers[TaskTypePing] = p.handlePing
	p.handlers[TaskTypeCollaborate] = p.handleCollaborate
	p.handlers[TaskTypeOptimizeParameters] = p.handleOptimizeParameters
	p.handlers[TaskTypeShareKnowledge] = p.handleShareKnowledge
}

// handlePing echoes the agent's status and capability set.
func (p *Peer) handlePing(_ context.Context, _ Request) (map[string]any, error) {
	caps := p.agent.Capabilities()
	capNames := make([]string, len(caps))
	for i, c := range caps {
		capNames[i] = string(c)
	}

	return map[string]any{
		"agent_id":     p.agent.ID(),
		"status":       p.agent.Status().String(),
		"capabilities": capNames,
		"timestamp":    time.Now().Format(time.RFC3339Nano),
	}, nil
}

// handleCollaborate executes the shared task spec on the local agent and
// returns this participant's result. Fanning out to the remaining
// participants is the initiator's job (Peer.Collaborate), which keeps the
// handler non-recursive.
func (p *Peer) handleCollaborate(ctx context.Context, req Request) (map[string]any, error) {
	spec, ok := req.Parameters["task"].(map[string]any)
	if !ok {
		return nil, errors.New("collaborate requires a task spec under \"task\"")
	}

	task := taskFromSpec(spec)
	if prev, ok := req.Parameters["previous"].(map[string]any); ok {
		task.Parameters["previous"] = prev
	}

	res := p.agent.Execute(ctx, task)
	if !res.Success {
		return nil, fmt.Errorf("collaboration on %s failed: %s", task.ID, res.Error)
	}

	return map[string]any{
		"participant": p.agent.ID(),
		"result":      res.Result,
		"duration_ms": res.Duration.Milliseconds(),
	}, nil
}

// handleOptimizeParameters runs an exhaustive small-grid search over the
// supplied parameter space, scoring each candidate against the supplied
// evaluation criteria. It returns the best parameters and score together
// with the full evaluation list.
func (p *Peer) handleOptimizeParameters(ctx context.Context, req Request) (map[string]any, error) {
	space, ok := req.Parameters["parameter_space"].(map[string]any)
	if !ok || len(space) == 0 {
		return nil, errors.New("optimize_parameters requires a non-empty \"parameter_space\"")
	}
	criteria, ok := req.Parameters["criteria"].(map[string]any)
	if !ok || len(criteria) == 0 {
		return nil, errors.New("optimize_parameters requires non-empty \"criteria\"")
	}
	weights, _ := req.Parameters["weights"].(map[string]any)

	candidates, err := gridCandidates(space)
	if err != nil {
		return nil, err
	}

	var (
		evaluations = make([]map[string]any, 0, len(candidates))
		best        map[string]any
		bestScore   = math.Inf(-1)
	)
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		score := scoreCandidate(candidate, criteria, weights)
		evaluations = append(evaluations, map[string]any{
			"parameters": candidate,
			"score":      score,
		})
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	return map[string]any{
		"best_parameters": best,
		"best_score":      bestScore,
		"evaluations":     evaluations,
	}, nil
}

// handleShareKnowledge stores the shared entry and acknowledges receipt.
func (p *Peer) handleShareKnowledge(_ context.Context, req Request) (map[string]any, error) {
	topic, ok := req.Parameters["topic"].(string)
	if !ok || topic == "" {
		return nil, errors.New("share_knowledge requires a non-empty \"topic\"")
	}

	entry := KnowledgeEntry{
		Topic:      topic,
		Content:    req.Parameters["content"],
		From:       req.From,
		ReceivedAt: time.Now(),
	}

	p.mu.Lock()
	p.knowledge[topic] = entry
	p.mu.Unlock()

	return map[string]any{
		"acknowledged": true,
		"topic":        topic,
	}, nil
}

// taskFromSpec builds a task from a loose map spec, minting an id when the
// spec carries none.
func taskFromSpec(spec map[string]any) core.Task {
	task := core.Task{Parameters: make(map[string]any)}
	if id, ok := spec["id"].(string); ok && id != "" {
		task.ID = id
	} else {
		task.ID = "collab-" + uuid.NewString()
	}
	if op, ok := spec["operation"].(string); ok {
		task.Operation = op
	}
	if params, ok := spec["parameters"].(map[string]any); ok {
		for k, v := range params {
			task.Parameters[k] = v
		}
	}
	return task
}

// gridCandidates expands the parameter space into the cartesian product of
// its value lists, iterating keys in sorted order so the expansion is
// deterministic.
func gridCandidates(space map[string]any) ([]map[string]any, error) {
	keys := make([]string, 0, len(space))
	total := 1
	values := make(map[string][]any, len(space))
	for k, v := range space {
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("parameter %q must map to a non-empty value list", k)
		}
		keys = append(keys, k)
		values[k] = list
		total *= len(list)
		if total > maxGridCandidates {
			return nil, fmt.Errorf("parameter space exceeds %d candidates", maxGridCandidates)
		}
	}
	sort.Strings(keys)

	candidates := make([]map[string]any, 0, total)
	indexes := make([]int, len(keys))
	for {
		candidate := make(map[string]any, len(keys))
		for i, k := range keys {
			candidate[k] = values[k][indexes[i]]
		}
		candidates = append(candidates, candidate)

		pos := len(keys) - 1
		for pos >= 0 {
			indexes[pos]++
			if indexes[pos] < len(values[keys[pos]]) {
				break
			}
			indexes[pos] = 0
			pos--
		}
		if pos < 0 {
			return candidates, nil
		}
	}
}

// scoreCandidate measures weighted closeness to the criteria targets.
// Numeric targets contribute the negated weighted squared distance;
// non-numeric targets contribute +weight on equality and -weight
// otherwise. Higher is better, zero is a perfect match.
func scoreCandidate(candidate, criteria, weights map[string]any) float64 {
	score := 0.0
	for key, target := range criteria {
		weight := 1.0
		if w, ok := toFloat(weights[key]); ok {
			weight = w
		}

		value, present := candidate[key]
		if !present {
			score -= weight
			continue
		}

		tf, targetNumeric := toFloat(target)
		vf, valueNumeric := toFloat(value)
		if targetNumeric && valueNumeric {
			diff := vf - tf
			score -= weight * diff * diff
			continue
		}

		if fmt.Sprintf("%v", value) == fmt.Sprintf("%v", target) {
			score += weight
		} else {
			score -= weight
		}
	}
	return score
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
