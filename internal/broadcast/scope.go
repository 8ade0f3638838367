package broadcast

import (
	"sync"

	"github.com/sidereusnuntius/fairsonority/internal/store"
)

// Scope groups the subscriptions of one mounted consumer. Closing the scope closes all of them.
type Scope struct {
	src Source

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

func NewScope(src Source) *Scope {
	return &Scope{src: src}
}

func (s *Scope) State() store.RootState {
	return s.src.State()
}

// Subscribe subscribes through the scope's source. Subscribing on a closed scope returns a closed subscription.
func (s *Scope) Subscribe(fn func(store.RootState)) *Subscription {
	sub := s.src.Subscribe(fn)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.Close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Mount runs setup with a fresh scope and returns the function releasing it. If setup fails or panics, the
// subscriptions it acquired are released before Mount returns or the panic continues.
func Mount(src Source, setup func(*Scope) error) (release func(), err error) {
	sc := NewScope(src)
	defer func() {
		if r := recover(); r != nil {
			sc.Close()
			panic(r)
		}
	}()

	if err := setup(sc); err != nil {
		sc.Close()
		return nil, err
	}
	return sc.Close, nil
}
