package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/surveyforge/backend/internal/domain"
)

type entry struct {
	cancel context.CancelCauseFunc
}

// Manager enforces last-request-wins semantics per chat session: starting
// a new request cancels the one still in flight for the same session, so
// a slow model call never delivers a stale reply over a newer one.
type Manager struct {
	mu     sync.Mutex
	active map[string]*entry
}

// NewManager creates a session manager.
func NewManager() *Manager {
	return &Manager{active: make(map[string]*entry)}
}

// Begin registers a new request for the session, cancelling any request
// already in flight for it. The returned done func must be called when
// the request finishes; it releases the slot only if the request is
// still the current one.
func (m *Manager) Begin(parent context.Context, session string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	e := &entry{cancel: cancel}

	m.mu.Lock()
	if prev, ok := m.active[session]; ok {
		prev.cancel(domain.ErrSuperseded)
	}
	m.active[session] = e
	m.mu.Unlock()

	done := func() {
		m.mu.Lock()
		if m.active[session] == e {
			delete(m.active, session)
		}
		m.mu.Unlock()
		cancel(nil)
	}
	return ctx, done
}

// Superseded reports whether ctx was cancelled because a newer request
// arrived for the same session.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), domain.ErrSuperseded)
}
