package store

import "sync"

// Store holds the current State and serializes event dispatch. Completions
// arrive from effect goroutines, so every transition goes through Dispatch.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore(cfg PortalConfig) *Store {
	return &Store{state: New(cfg)}
}

// Dispatch reduces ev into the current state and returns the effects the
// caller must run.
func (s *Store) Dispatch(ev Event) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, effects := Reduce(s.state, ev)
	s.state = next
	return effects
}

// State returns a snapshot. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
