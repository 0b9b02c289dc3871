package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned reply of a MockProvider.
type MockResponse struct {
	Content   json.RawMessage
	Usage     Usage
	Truncated bool
	Err       error
}

// MockProvider replays canned replies in order and records every request.
// It runs offline, so tests can put it behind Wrap to exercise the full
// decorator stack.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider queues responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next reply. An empty queue behaves like a provider
// outage.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", Truncated: r.Truncated}, nil
}

func (m *MockProvider) Name() string  { return "mock" }
func (m *MockProvider) Model() string { return "mock" }

// CallCount returns the number of Generate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
