// Package embedding wraps sentence-embedding backends behind a narrow
// text-in/vector-out interface with a fail-soft provider on top: if no
// backend can be initialized, every semantic feature built on embeddings
// degrades to a neutral default instead of failing the request.
package embedding

import (
	"context"
	"errors"
)

// Client is the interface for embedding backends.
type Client interface {
	// Embed turns text into a fixed-length vector.
	Embed(ctx context.Context, text string) ([]float64, error)
}

var (
	// ErrUnavailable indicates no embedding backend could be initialized.
	// Callers must degrade to their documented neutral defaults.
	ErrUnavailable = errors.New("embedding backend unavailable")
)
