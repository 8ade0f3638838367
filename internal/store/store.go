// Package store holds the application state and applies actions to it.
//
// Every dispatched action runs through one reducer per slice while the store lock is held. The resulting
// snapshots are then handed to the listeners, one snapshot at a time and in dispatch order, by whichever
// dispatch call is currently draining. A dispatch made from inside a listener is queued behind the snapshot
// being delivered.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

type Listener func(RootState)

type listener struct {
	fn     Listener
	closed atomic.Bool
}

type Store struct {
	mu        sync.Mutex
	state     RootState
	listeners []*listener
	queue     []RootState
	draining  bool
}

func New(initial RootState) *Store {
	return &Store{state: initial}
}

func (s *Store) GetState() RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the resulting state. Listeners are notified before Dispatch returns, unless
// another dispatch is already draining, in which case that dispatch delivers the snapshot.
func (s *Store) Dispatch(a Action) RootState {
	s.mu.Lock()
	s.state = reduce(s.state, a)
	next := s.state
	log.Trace().Str("action", a.Type()).Msg("dispatched")

	s.queue = append(s.queue, next)
	if s.draining {
		s.mu.Unlock()
		return next
	}
	s.draining = true
	s.drain()
	s.draining = false
	s.mu.Unlock()
	return next
}

// drain must be called with s.mu held; it releases the lock while listeners run.
func (s *Store) drain() {
	for len(s.queue) > 0 {
		snapshot := s.queue[0]
		s.queue[0] = RootState{}
		s.queue = s.queue[1:]
		listeners := make([]*listener, len(s.listeners))
		copy(listeners, s.listeners)

		s.mu.Unlock()
		for _, l := range listeners {
			if !l.closed.Load() {
				notify(l.fn, snapshot)
			}
		}
		s.mu.Lock()
	}
	s.queue = nil
}

func notify(fn Listener, state RootState) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("store listener panicked")
		}
	}()
	fn(state)
}

// Subscribe registers fn for every later dispatch. The returned function unregisters it; fn is skipped for
// every snapshot whose delivery starts after that.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	l := &listener{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.closed.Store(true)
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, other := range s.listeners {
				if other == l {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
		})
	}
}
