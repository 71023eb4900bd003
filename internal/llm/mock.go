package llm

import (
	"context"
	"sync"
)

// MockClient is a mock LLM client for testing. Responses are returned in
// order; the last one repeats once the queue is exhausted.
type MockClient struct {
	mu          sync.Mutex
	Responses   []string
	Error       error
	CallCount   int
	LastRequest *Request
}

// NewMockClient creates a mock client that always returns response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Responses: []string{response}}
}

// NewMockClientSeq creates a mock client that returns responses in sequence.
func NewMockClientSeq(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

// Complete returns the next queued response.
func (c *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.CallCount
	c.CallCount++
	c.LastRequest = &req

	if c.Error != nil {
		return nil, c.Error
	}
	if len(c.Responses) == 0 {
		return nil, ErrInvalidResponse
	}
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}

	return &Response{Content: c.Responses[idx], Model: "mock-model"}, nil
}

// Provider returns the mock provider.
func (c *MockClient) Provider() Provider { return "mock" }

// Model returns the mock model name.
func (c *MockClient) Model() string { return "mock-model" }

var _ Client = (*MockClient)(nil)

// MockFactory is a ClientFactory that hands out a fixed client.
type MockFactory struct {
	Client Client
	Err    error
}

func (f *MockFactory) Available() bool           { return f.Client != nil }
func (f *MockFactory) DefaultProvider() Provider { return "mock" }
func (f *MockFactory) DefaultModel() string      { return "mock-model" }

func (f *MockFactory) ListProviders() []ProviderInfo {
	return []ProviderInfo{{ID: "mock", Name: "Mock", Available: f.Client != nil}}
}

func (f *MockFactory) CreateClient(provider Provider, model string) (Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Client, nil
}

func (f *MockFactory) CreateDefaultClient() (Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Client == nil {
		return nil, ErrNotConfigured
	}
	return f.Client, nil
}

var _ ClientFactory = (*MockFactory)(nil)
