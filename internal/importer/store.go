package importer

import (
	"context"
	"sync"
	"time"
)

// Store keeps live wizard sessions in memory, keyed by wizard id. An
// abandoned wizard (navigation away, closed tab) is simply orphaned
// here until the janitor sweeps it; nothing is ever persisted.
type Store struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	ttl     time.Duration
}

// NewStore creates a store whose sessions expire after ttl of
// inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{wizards: make(map[string]*Wizard), ttl: ttl}
}

// Create starts and registers a new wizard session.
func (s *Store) Create() *Wizard {
	w := NewWizard()
	s.mu.Lock()
	s.wizards[w.ID] = w
	s.mu.Unlock()
	return w
}

// Get returns the wizard with the given id, or nil when it expired or
// never existed.
func (s *Store) Get(id string) *Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizards[id]
}

// Delete drops a session, typically after the done screen was shown.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.wizards, id)
	s.mu.Unlock()
}

// Sweep removes sessions idle longer than the ttl and reports how many
// were dropped.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, w := range s.wizards {
		if now.Sub(w.Touched()) > s.ttl {
			delete(s.wizards, id)
			dropped++
		}
	}
	return dropped
}

// StartJanitor sweeps periodically until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}
