// Package auth exposes the current authenticated identity as an
// observable value. The rest of the application only ever asks "who is
// signed in right now" or watches for that answer to change; how the
// identity was obtained is someone else's problem.
package auth

import "sync"

// Identity is an authenticated user.
type Identity struct {
	UserID string
	Email  string
}

// Provider reports the current identity and notifies watchers when it
// changes. A nil identity means signed out.
type Provider interface {
	// Current returns the identity at this instant, or nil.
	Current() *Identity
	// Watch returns a channel that receives the current identity
	// immediately and every subsequent change. The channel is closed
	// when the provider shuts down.
	Watch() <-chan *Identity
}

// Memory is a settable in-process Provider. The application signs an
// identity in or out; watchers observe the transitions.
type Memory struct {
	mu       sync.Mutex
	current  *Identity
	watchers []chan *Identity
	closed   bool
}

// NewMemory returns a Memory provider with no identity.
func NewMemory() *Memory {
	return &Memory{}
}

// Current implements Provider.
func (m *Memory) Current() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Watch implements Provider.
func (m *Memory) Watch() <-chan *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *Identity, 8)
	if m.closed {
		close(ch)
		return ch
	}
	ch <- m.current
	m.watchers = append(m.watchers, ch)
	return ch
}

// SignIn sets the current identity and notifies watchers.
func (m *Memory) SignIn(id Identity) {
	m.set(&id)
}

// SignOut clears the current identity and notifies watchers.
func (m *Memory) SignOut() {
	m.set(nil)
}

func (m *Memory) set(id *Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.current = id
	for _, ch := range m.watchers {
		// Watchers that stopped draining miss intermediate states but
		// still hold a buffered earlier value; they are expected to
		// re-check Current on receipt anyway.
		select {
		case ch <- id:
		default:
		}
	}
}

// Close closes all watcher channels. Further SignIn/SignOut calls are
// ignored.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, ch := range m.watchers {
		close(ch)
	}
	m.watchers = nil
}
