package persistence

import (
	"context"
	"fmt"
	"sync"
)

// Writer is the write side of the store, used by devices when they
// snapshot their state.
type Writer interface {
	Set(section, key, value string)
}

// Store is the in-memory view of persisted device state: one section
// per device storage name, string values per key. It tracks whether
// anything changed since the last flush.
//
// Two things make a store changed: a Set that altered a value, and a
// MarkChanged from a device whose state has moved ahead of the store.
// The latter is counted so a flush only settles the marks it has seen.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sections Sections
	dirty    bool
	marks    uint64
	flushed  uint64
	repo     Repository
}

// NewStore creates a store backed by repo. A nil repo keeps the store
// in memory only.
func NewStore(repo Repository) *Store {
	return &Store{
		sections: make(Sections),
		repo:     repo,
	}
}

// Load replaces the in-memory contents with everything in the repository.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	data, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading persistence: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = data
	s.dirty = false
	s.flushed = s.marks
	return nil
}

// HasSection reports whether any key is stored for section.
func (s *Store) HasSection(section string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sections[section]
	return ok
}

// Get returns the value stored under section and key.
func (s *Store) Get(section, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.sections[section][key]
	return v, ok
}

// Section returns a copy of one section.
func (s *Store) Section(section string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kv, ok := s.sections[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, section)
	}
	out := make(map[string]string, len(kv))
	for k, v := range kv {
		out[k] = v
	}
	return out, nil
}

// Set stores value and marks the store changed if it differs.
func (s *Store) Set(section, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kv := s.sections[section]
	if kv == nil {
		kv = make(map[string]string)
		s.sections[section] = kv
	}
	if old, ok := kv[key]; ok && old == value {
		return
	}
	kv[key] = value
	s.dirty = true
}

// MarkChanged flags the store as needing a flush. Devices call it when
// their in-memory state moves ahead of the store.
func (s *Store) MarkChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks++
}

// Changed reports whether the store needs a flush.
func (s *Store) Changed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty || s.marks != s.flushed
}

// generation returns the number of MarkChanged calls so far.
func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks
}

// Snapshot returns a deep copy of every section.
func (s *Store) Snapshot() Sections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Sections, len(s.sections))
	for section, kv := range s.sections {
		cp := make(map[string]string, len(kv))
		for k, v := range kv {
			cp[k] = v
		}
		out[section] = cp
	}
	return out
}

// Flush writes every section to the repository and clears the changed
// state. On error the store stays changed so the next flush retries.
func (s *Store) Flush(ctx context.Context) error {
	return s.flush(ctx, s.generation())
}

// flush saves the store and settles the marks up to gen. Writes and
// marks that land while the save is in flight keep the store changed.
func (s *Store) flush(ctx context.Context, gen uint64) error {
	if s.repo == nil {
		return ErrNoRepository
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()

	if err := s.repo.SaveAll(ctx, s.Snapshot()); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("flushing persistence: %w", err)
	}

	s.mu.Lock()
	if gen > s.flushed {
		s.flushed = gen
	}
	s.mu.Unlock()
	return nil
}
