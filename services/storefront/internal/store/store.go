// Package store provides a state container that serializes transitions and
// fans committed snapshots out to subscribers.
package store

import "sync"

// Transition computes the next state from the current one. Transitions must
// not mutate their argument.
type Transition[S any] func(S) S

// Store holds one state value. Dispatches are applied one at a time and
// listeners observe every committed state in dispatch order.
type Store[S any] struct {
	// dispatchMu is held for the whole of a dispatch, listener calls
	// included. mu only guards the fields below.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	state     S
	listeners map[uint64]func(S)
	nextID    uint64
}

// New creates a store seeded with initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:     initial,
		listeners: make(map[uint64]func(S)),
	}
}

// State returns the current snapshot.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies t to the current state, commits the result and notifies
// listeners before returning it. Listeners may read State but must not
// dispatch to the same store.
func (s *Store[S]) Dispatch(t Transition[S]) S {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := t(s.state)
	s.state = next
	listeners := make([]func(S), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Subscribe registers fn for every future committed state and returns a
// function that removes it. Calling the returned function more than once is
// harmless.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
