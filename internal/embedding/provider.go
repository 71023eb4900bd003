package embedding

import (
	"context"
	"sync"
)

// InitFunc constructs the underlying embedding backend. It is invoked at
// most once, on first use.
type InitFunc func() (Client, error)

// Provider is a lazily-initialized, process-wide embedding source.
// Initialization happens on the first Embed call; if it fails, the
// provider stays in an unavailable state for the rest of the process
// lifetime and every call returns ErrUnavailable. The provider is safe
// for concurrent use and read-only after initialization.
type Provider struct {
	initFn InitFunc

	once   sync.Once
	client Client
}

// NewProvider creates a provider around initFn.
func NewProvider(initFn InitFunc) *Provider {
	return &Provider{initFn: initFn}
}

// NewStaticProvider creates a provider over an already-built client.
// A nil client yields a permanently unavailable provider.
func NewStaticProvider(c Client) *Provider {
	p := &Provider{}
	p.once.Do(func() { p.client = c })
	return p
}

func (p *Provider) get() Client {
	p.once.Do(func() {
		if p.initFn == nil {
			return
		}
		c, err := p.initFn()
		if err != nil {
			// Stay unavailable; callers degrade to neutral defaults.
			return
		}
		p.client = c
	})
	return p.client
}

// Available reports whether a backend is (or can be) ready. It triggers
// lazy initialization.
func (p *Provider) Available() bool {
	return p.get() != nil
}

// Embed returns the embedding for text, or ErrUnavailable if no backend
// could be initialized.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	c := p.get()
	if c == nil {
		return nil, ErrUnavailable
	}
	return c.Embed(ctx, text)
}
