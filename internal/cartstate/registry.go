package cartstate

import "sync"

// Factory builds the State for a new shopper session id.
type Factory func(sessionID string) *State

// Registry maps shopper session ids to their cart state. States are created
// lazily on first use and live for the life of the process; a shopper whose
// session cookie survives a restart gets a fresh State that recovers the cart
// through the identity store.
type Registry struct {
	factory Factory

	mu     sync.Mutex
	states map[string]*State
}

// NewRegistry creates a registry backed by the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		states:  make(map[string]*State),
	}
}

// Get returns the state for the session id, creating it on first use.
func (r *Registry) Get(sessionID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[sessionID]
	if !ok {
		state = r.factory(sessionID)
		r.states[sessionID] = state
	}
	return state
}

// Len returns the number of live session states.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
