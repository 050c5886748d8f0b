package core

import (
	"fmt"
	"strings"
)

// SelfTestOperation is the operation name BaseAgent uses for the bootstrap
// self-test invocation of an agent's own execution path. Executors should
// treat it as a cheap no-op probe and return a successful result.
const SelfTestOperation = "agent.self_test"

// Task is a unit of work submitted to the runtime. Composite operations are
// decomposed into subtasks; anything else is routed directly to a single
// capability-matched agent.
type Task struct {
	ID         string
	Operation  string
	Parameters map[string]any
}

// Subtask is one atomic unit of a decomposed composite task.
type Subtask struct {
	ID string

	// Type is the capability tag an executing agent must declare.
	Type Capability

	// Input is the subtask's parameter map. Values may be DependencyRef
	// values (or their string token form) that the coordinator resolves
	// against prior subtask results before dispatch.
	Input map[string]any

	// Requirements further constrains agent selection.
	Requirements Requirements
}

// DependencyRef is a typed reference to a field of a prior subtask's result
// payload. An empty FieldPath refers to the whole payload. The coordinator
// resolves references against results from strictly earlier generations; an
// unresolvable reference is left in the input as its literal Token form.
type DependencyRef struct {
	SubtaskID string
	FieldPath string
}

// Token renders the reference in its string token form,
// "{{<subtask-id>.result}}" or "{{<subtask-id>.result.<field-path>}}".
func (r DependencyRef) Token() string {
	if r.FieldPath == "" {
		return fmt.Sprintf("{{%s.result}}", r.SubtaskID)
	}
	return fmt.Sprintf("{{%s.result.%s}}", r.SubtaskID, r.FieldPath)
}

// ParseRefToken parses the string token form of a dependency reference.
// The boolean is false when s is not a well-formed token.
func ParseRefToken(s string) (DependencyRef, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return DependencyRef{}, false
	}
	body := strings.TrimSpace(s[2 : len(s)-2])
	if body == "" {
		return DependencyRef{}, false
	}
	if id, ok := strings.CutSuffix(body, ".result"); ok {
		if id == "" {
			return DependencyRef{}, false
		}
		return DependencyRef{SubtaskID: id}, true
	}
	id, path, ok := strings.Cut(body, ".result.")
	if !ok || id == "" || path == "" {
		return DependencyRef{}, false
	}
	return DependencyRef{SubtaskID: id, FieldPath: path}, true
}
