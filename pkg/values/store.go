// Package values holds the mutable form-state store a wizard reads from and
// writes to.
package values

import (
	"fmt"
	"slices"
	"sync"
)

// Change describes a single write to a store.
type Change struct {
	Path  string
	Value any
}

// Listener receives changes after they have been applied.
type Listener func(Change)

// Store is the form-state collaborator. Paths are dotted; Set creates
// intermediate maps and slices as needed.
type Store interface {
	Get(path string) (any, bool)
	Set(path string, value any) error
	Delete(path string) error
	Snapshot() map[string]any
	Replace(values map[string]any)
	Subscribe(fn Listener) (unsubscribe func())
}

// MemoryStore is an in-process Store safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners map[int]Listener
	nextID    int
}

// NewMemoryStore seeds a store with a deep copy of prefill.
func NewMemoryStore(prefill map[string]any) *MemoryStore {
	return &MemoryStore{
		values:    Clone(prefill),
		listeners: make(map[int]Listener),
	}
}

// Get resolves a dotted path.
func (s *MemoryStore) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := getPath(s.values, path)
	if !ok {
		return nil, false
	}
	return deepCopy(value), true
}

// Set writes value at path and notifies subscribers.
func (s *MemoryStore) Set(path string, value any) error {
	if path == "" {
		return fmt.Errorf("values: empty path")
	}
	s.mu.Lock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	err := setPath(s.values, path, deepCopy(value))
	listeners := s.snapshotListeners()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	notify(listeners, Change{Path: path, Value: value})
	return nil
}

// Delete removes the value at path. Missing paths are not an error.
func (s *MemoryStore) Delete(path string) error {
	if path == "" {
		return fmt.Errorf("values: empty path")
	}
	s.mu.Lock()
	deletePath(s.values, path)
	listeners := s.snapshotListeners()
	s.mu.Unlock()
	notify(listeners, Change{Path: path})
	return nil
}

// Snapshot returns a deep copy of the current values.
func (s *MemoryStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.values)
}

// Replace swaps the whole value map, notifying subscribers with an empty path.
func (s *MemoryStore) Replace(values map[string]any) {
	s.mu.Lock()
	s.values = Clone(values)
	listeners := s.snapshotListeners()
	s.mu.Unlock()
	notify(listeners, Change{})
}

// Subscribe registers fn for subsequent changes.
func (s *MemoryStore) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *MemoryStore) snapshotListeners() []Listener {
	if len(s.listeners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func notify(listeners []Listener, change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}

// Clone deep-copies nested maps and slices of values.
func Clone(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}
