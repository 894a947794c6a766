package hierarchy

import (
	"sync"

	"github.com/terramesa/uplinkmap/internal/visibility"
)

// State owns the only mutable data in the system: one enabled flag per
// node, all true after a load. The lock serializes toggles, so no two
// visibility recomputations ever overlap.
type State struct {
	mu    sync.RWMutex
	snap  visibility.Snapshot
	flags visibility.Flags
}

// NewState starts every node enabled.
func NewState(ix *Index) *State {
	snap := ix.Snapshot()
	return &State{snap: snap, flags: visibility.NewFlags(snap)}
}

// SetEnabled sets one node's flag and returns the recomputed line
// visibility. ok is false for unknown nodes and the state stays
// untouched. Setting a flag to its current value is a no-op with the
// same return, so repeated clicks are harmless.
func (s *State) SetEnabled(kind Kind, id string, enabled bool) (visibility.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.kindFlags(kind)
	if !ok {
		return visibility.Result{}, false
	}
	if _, known := m[id]; !known {
		return visibility.Result{}, false
	}
	m[id] = enabled
	return visibility.Compute(s.snap, s.flags), true
}

// Enabled reports one node's flag. ok is false for unknown nodes.
func (s *State) Enabled(kind Kind, id string) (enabled, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.kindFlags(kind)
	if !ok {
		return false, false
	}
	v, known := m[id]
	return v, known
}

// Reset re-enables every node and returns the recomputed visibility.
func (s *State) Reset() visibility.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = visibility.NewFlags(s.snap)
	return visibility.Compute(s.snap, s.flags)
}

// Visibility computes line visibility for the current flags.
func (s *State) Visibility() visibility.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return visibility.Compute(s.snap, s.flags)
}

// Flags returns an independent copy of the current flag set.
func (s *State) Flags() visibility.Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags.Clone()
}

func (s *State) kindFlags(kind Kind) (map[string]bool, bool) {
	switch kind {
	case KindProvince:
		return s.flags.Provinces, true
	case KindCity:
		return s.flags.Cities, true
	case KindBarangay:
		return s.flags.Barangays, true
	}
	return nil, false
}
