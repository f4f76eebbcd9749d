package state

import (
	"fmt"
	"sync"
	"time"
)

// offlineAfter is the number of consecutive dial failures after which the
// host is reported offline rather than reconnecting.
const offlineAfter = 2

// Snapshot describes the device's link to the host.
type Snapshot struct {
	Connected           bool
	LastMessage         time.Time
	Messages            int
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the host has been unreachable for several dials.
func (s Snapshot) IsOffline() bool {
	return !s.Connected && s.ConsecutiveFailures >= offlineAfter
}

// Store coordinates concurrent updates to the link snapshot. The zero value is
// ready to use and a nil *Store ignores every update.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// NewStore returns a Store stamping messages with now. A nil now uses
// time.Now.
func NewStore(now func() time.Time) *Store {
	return &Store{now: now}
}

// Connected records a successful dial.
func (s *Store) Connected() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Connected = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Disconnected records the loss of an open connection.
func (s *Store) Disconnected(err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Connected = false
	s.snapshot.LastError = err
}

// Failed records a dial that did not succeed.
func (s *Store) Failed(err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Connected = false
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Received records one inbound message.
func (s *Store) Received() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Messages++
	s.snapshot.LastMessage = s.clock()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
