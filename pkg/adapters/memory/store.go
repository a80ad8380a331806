package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

// Store implements ports.SpecStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*spec.MasterSpec
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with specs.
func NewStore(seed ...map[string]*spec.MasterSpec) *Store {
	s := &Store{data: make(map[string]*spec.MasterSpec)}
	for _, m := range seed {
		for name, ms := range m {
			s.data[name] = ms.Clone()
		}
	}
	return s
}

// Save stores a deep copy so later changes by the caller do not leak in.
func (s *Store) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if ms == nil {
		return fmt.Errorf("save %s: nil spec", name)
	}
	cp := ms.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = cp
	return nil
}

// Load returns a copy so the caller can't mutate the stored spec through it.
func (s *Store) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.data[name]
	if !ok {
		return nil, ports.ErrSpecNotFound
	}
	return ms.Clone(), nil
}

// Delete removes the spec.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
