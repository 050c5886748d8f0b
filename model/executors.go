package model

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthive/hive/core"
)

// roleInstructions maps an operation name to the system instructions a
// provider-backed executor runs it under. Operations without an entry fall
// back to a generic assistant role.
var roleInstructions = map[string]string{
	"research": "You are a researcher. Gather the strongest factual points on the given topic and return them as concise bullet points.",
	"argue":    "You are a debater. Construct the most persuasive argument for your assigned stance, grounded in the provided research.",
	"judge":    "You are an impartial judge. Weigh the presented arguments and declare a winner with a short justification.",
	"analyze":  "You are an analyst. Examine the input and report its key characteristics.",
	"generate": "You are a data generator. Produce output matching the requested schema and constraints.",
	"profile":  "You are a data profiler. Describe the statistical properties of the requested dataset.",
}

// CompletionExecutor runs tasks through a language-model provider. It
// satisfies the self-test probe without spending a completion, so agents
// built on it bootstrap even when the provider is unreachable.
type CompletionExecutor struct {
	provider Provider
}

// NewCompletionExecutor wraps the given provider as an agent executor.
func NewCompletionExecutor(provider Provider) *CompletionExecutor {
	return &CompletionExecutor{provider: provider}
}

// ExecuteTask implements agent.Executor.
func (e *CompletionExecutor) ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error) {
	if task.Operation == core.SelfTestOperation {
		return map[string]any{"status": "ok", "provider": e.provider.Info().Provider}, nil
	}

	req := Request{
		System: instructionsFor(task),
		Prompt: renderPrompt(task),
	}
	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion for operation %s: %w", task.Operation, err)
	}

	return map[string]any{
		"text":          resp.Text,
		"finish_reason": resp.FinishReason,
		"operation":     task.Operation,
		"model":         e.provider.Info().Name,
	}, nil
}

func instructionsFor(task core.Task) string {
	if system, ok := task.Parameters["system"].(string); ok && system != "" {
		return system
	}
	if instructions, ok := roleInstructions[task.Operation]; ok {
		return instructions
	}
	return "You are a helpful assistant. Complete the requested operation."
}

// renderPrompt flattens the task parameters into a prompt. The "prompt"
// parameter leads when present; remaining parameters follow as labelled
// context lines so resolved upstream results reach the model.
func renderPrompt(task core.Task) string {
	var b strings.Builder

	if prompt, ok := task.Parameters["prompt"].(string); ok && prompt != "" {
		b.WriteString(prompt)
	} else {
		fmt.Fprintf(&b, "Perform the %q operation.", task.Operation)
	}

	for _, key := range sortedKeys(task.Parameters) {
		if key == "prompt" || key == "system" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %v", key, task.Parameters[key])
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
