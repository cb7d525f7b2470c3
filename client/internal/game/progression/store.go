package progression

import "sync"

// Store owns the single mutable Model of a session. A remote response replaces
// it wholesale; the battle only ever adds experience to it.
type Store struct {
	mu     sync.RWMutex
	model  Model
	loaded bool
}

func NewStore() *Store { return &Store{} }

// Replace swaps in a fresh snapshot.
func (s *Store) Replace(m Model) {
	s.mu.Lock()
	s.model = m
	s.loaded = true
	s.mu.Unlock()
}

// Snapshot returns a copy of the current model and whether one was loaded.
func (s *Store) Snapshot() (Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.loaded
}

// Stats derives the combat stats from the current model.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return NoStats
	}
	return s.model.Stats()
}

// AddExperience credits a local reward. It is not synced anywhere; the next
// server snapshot wins. Ignored until a model is loaded.
func (s *Store) AddExperience(n int64) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	if s.loaded {
		s.model.Experience += n
	}
	s.mu.Unlock()
}
