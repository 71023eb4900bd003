package embedding

import (
	"context"
	"errors"
)

// MockClient is an embedding backend for tests. Vectors maps exact text
// to its vector; unknown text falls back to Default, or an error if
// Default is nil.
type MockClient struct {
	Vectors   map[string][]float64
	Default   []float64
	Err       error
	CallCount int
}

// Embed returns the configured vector for text.
func (m *MockClient) Embed(ctx context.Context, text string) ([]float64, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	if m.Default != nil {
		return m.Default, nil
	}
	return nil, errors.New("no vector configured for text")
}

var _ Client = (*MockClient)(nil)

// FailingProvider returns a provider whose initialization always fails,
// for exercising fail-soft paths.
func FailingProvider() *Provider {
	return NewProvider(func() (Client, error) {
		return nil, ErrUnavailable
	})
}
