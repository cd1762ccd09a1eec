// Package latest keeps only the most recently requested result when several
// requests for the same view may be in flight.
package latest

import "sync"

// Ticket identifies one request. Tickets are ordered by issue time.
type Ticket uint64

// Slot holds the value of the newest request that has completed. A value
// published with an outdated ticket is discarded.
type Slot[T any] struct {
	mu        sync.Mutex
	issued    Ticket
	published Ticket
	value     T
	has       bool
}

// Begin issues a ticket for a new request and makes every older ticket stale.
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Publish stores v if t is still the newest ticket. It reports whether v was
// accepted.
func (s *Slot[T]) Publish(t Ticket, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.issued || t <= s.published {
		return false
	}
	s.published = t
	s.value = v
	s.has = true
	return true
}

// Current reports whether t is still the newest ticket.
func (s *Slot[T]) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.issued
}

// Get returns the last accepted value.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}
