package llm

import (
	"context"
	"sync"

	"gocatalog/ports"
)

// MockCall captures one request made to a MockGateway.
type MockCall struct {
	Operation string
	Directive string
	History   []ports.Turn
	Message   string
}

// MockGateway is a canned gateway for tests.
type MockGateway struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors

	// Block, when non-nil, holds every call until it is closed.
	Block chan struct{}

	mu    sync.Mutex
	calls []MockCall
}

func (m *MockGateway) Converse(ctx context.Context, directive string, history []ports.Turn, message string) (string, error) {
	m.track(MockCall{Operation: ports.OperationConverse, Directive: directive, History: history, Message: message})
	return m.respond(ctx)
}

func (m *MockGateway) Summarize(ctx context.Context, directive, prompt string) (string, error) {
	m.track(MockCall{Operation: ports.OperationSummarize, Directive: directive, Message: prompt})
	return m.respond(ctx)
}

func (m *MockGateway) Provider() string { return "mock" }

func (m *MockGateway) Model() string { return "mock-model" }

// Calls returns a snapshot of the recorded calls.
func (m *MockGateway) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockGateway) track(call MockCall) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *MockGateway) respond(ctx context.Context) (string, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}
