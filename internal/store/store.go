package store

import (
	"sync"
	"sync/atomic"

	"room-client/pkg/logger"
)

// Listener receives the state right after intent changed its slice.
type Listener func(State, Intent)

type subscription struct {
	slice  Slice
	all    bool
	fn     Listener
	active atomic.Bool
}

type notification struct {
	state  State
	intent Intent
	subs   []*subscription
}

// Store owns the state of one session. Dispatch reduces synchronously, so
// the new state is visible as soon as it returns, whatever goroutine called
// it. Listeners are notified in reduction order, outside the lock, and may
// dispatch.
type Store struct {
	mu       sync.Mutex
	state    State
	subs     []*subscription
	queue    []notification
	draining bool
	closed   bool
}

func New(initial State) *Store {
	return &Store{state: initial}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(in Intent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Debug("store closed, dropping %s", in.Kind)
		return
	}

	prev := s.state
	next := Reduce(prev, in)
	s.state = next

	var targets []*subscription
	for _, sub := range s.subs {
		if sub.all || prev.Revision(sub.slice) != next.Revision(sub.slice) {
			targets = append(targets, sub)
		}
	}
	if len(targets) > 0 {
		s.queue = append(s.queue, notification{state: next, intent: in, subs: targets})
	}

	if s.draining || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}

	s.draining = true
	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		for _, sub := range n.subs {
			if sub.active.Load() {
				sub.fn(n.state, n.intent)
			}
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// Subscribe calls fn after every intent that changes slice. The returned
// function removes the subscription; it is safe to call more than once.
func (s *Store) Subscribe(slice Slice, fn Listener) (unsubscribe func()) {
	return s.add(&subscription{slice: slice, fn: fn})
}

// Observe calls fn after every dispatched intent, whether or not it changed
// anything.
func (s *Store) Observe(fn Listener) (unsubscribe func()) {
	return s.add(&subscription{all: true, fn: fn})
}

func (s *Store) add(sub *subscription) func() {
	sub.active.Store(true)

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, other := range s.subs {
			if other == sub {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Close drops all listeners. Intents dispatched afterwards are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		sub.active.Store(false)
	}
	s.subs = nil
	s.queue = nil
	s.closed = true
}
