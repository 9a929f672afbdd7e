// Package memory implements an in-process domain.SlotStore. Slots live only
// as long as the Store value; it is intended for tests and ephemeral sessions.
package memory

import (
	"context"
	"sort"
	"sync"

	"havenlist/pkg/domain"
)

var _ domain.SlotStore = (*Store)(nil)

// Store implements domain.SlotStore backed by process memory.
type Store struct {
	mu    sync.RWMutex
	slots map[domain.Slot][]byte
	puts  int
}

// New returns an empty in-memory slot store.
func New() *Store { return &Store{slots: make(map[domain.Slot][]byte)} }

// Get returns a copy of the slot payload.
func (s *Store) Get(_ context.Context, slot domain.Slot) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[slot]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Put overwrites the slot with a copy of payload.
func (s *Store) Put(_ context.Context, slot domain.Slot, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), payload...)
	s.puts++
	return nil
}

// Close is a no-op; contents stay readable so tests can inspect them.
func (s *Store) Close() error { return nil }

// Slots lists the written slot names in ascending order.
func (s *Store) Slots() []domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Slot, 0, len(s.slots))
	for k := range s.slots {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Puts reports how many writes the store has accepted.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
