// Package model defines the provider abstraction used by language-model
// backed agents. Providers turn a prompt into a completion; the anthropic
// and openai subpackages adapt the official vendor SDKs, and MockProvider
// backs tests and examples with deterministic canned output.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Request captures one normalized completion request.
type Request struct {
	// System carries the role instructions, rendered as the provider's
	// system message when non-empty.
	System string
	// Prompt is the user-facing input text.
	Prompt string
}

// TokenUsage captures token accounting for a completion.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the completed output for one request.
type Response struct {
	Text         string
	FinishReason string
	Usage        TokenUsage
}

// Info contains metadata about a provider implementation.
type Info struct {
	Name     string
	Provider string
}

// Provider is the minimal interface language-model agents drive.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// MockProvider is a lightweight in-memory Provider for tests and examples.
// Safe for concurrent use.
type MockProvider struct {
	info Info

	mu        sync.RWMutex
	responses map[string]string
	calls     int
	err       error
}

// NewMockProvider constructs a MockProvider with the given display name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion for prompts containing the
// given fragment.
func (m *MockProvider) AddResponse(fragment, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[fragment] = response
}

// FailWith makes every subsequent Complete call return err. Passing nil
// restores normal behavior.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many completions were requested.
func (m *MockProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Response{}, m.err
	}

	for fragment, canned := range m.responses {
		if strings.Contains(req.Prompt, fragment) {
			return Response{Text: canned, FinishReason: "stop"}, nil
		}
	}
	return Response{
		Text:         fmt.Sprintf("Mock completion for: %s", req.Prompt),
		FinishReason: "stop",
	}, nil
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
