// Package broadcast fans store changes out to any number of consumers through a single store listener.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/store"
)

// Source hands out subscriptions to state snapshots.
type Source interface {
	Subscribe(fn func(store.RootState)) *Subscription
	State() store.RootState
}

// Store is the part of *store.Store the broadcaster listens to.
type Store interface {
	GetState() store.RootState
	Subscribe(fn store.Listener) (unsubscribe func())
}

// Broadcaster registers itself with the store on its first subscription and stays registered for the lifetime of
// the store.
type Broadcaster struct {
	store Store
	once  sync.Once

	mu   sync.Mutex
	subs []*Subscription
}

func New(s Store) *Broadcaster {
	return &Broadcaster{store: s}
}

func (b *Broadcaster) State() store.RootState {
	return b.store.GetState()
}

// Subscribe delivers every snapshot produced after the call to fn, in mutation order.
func (b *Broadcaster) Subscribe(fn func(store.RootState)) *Subscription {
	b.once.Do(func() {
		b.store.Subscribe(b.emit)
	})

	sub := &Subscription{b: b, fn: fn}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

func (b *Broadcaster) emit(state store.RootState) {
	b.mu.Lock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.deliver(state)
	}
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

type Subscription struct {
	b  *Broadcaster
	fn func(store.RootState)

	mu     sync.Mutex
	closed bool
}

// deliver recovers a panicking fn so that the subscribers after it still get the snapshot.
func (s *Subscription) deliver(state store.RootState) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("broadcast subscriber panicked")
		}
	}()
	s.fn(state)
}

// Close stops the delivery of snapshots. It can be called more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.b.remove(s)
}

func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Equal compares values of comparable types, for use with Select.
func Equal[T comparable](a, b T) bool {
	return a == b
}

// Select calls fn with the value selector derives from each snapshot, skipping values equal to the previous one.
// The first previous value is derived from the state at the time of the call and is not delivered.
func Select[T any](src Source, selector func(store.RootState) T, equal func(a, b T) bool, fn func(T)) *Subscription {
	var mu sync.Mutex
	prev := selector(src.State())
	return src.Subscribe(func(state store.RootState) {
		next := selector(state)
		mu.Lock()
		same := equal(prev, next)
		prev = next
		mu.Unlock()
		if !same {
			fn(next)
		}
	})
}
