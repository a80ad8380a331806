package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

// MockStore is a simple map-based store for testing middleware. It records
// the name of every call it receives.
type MockStore struct {
	data  map[string]*spec.MasterSpec
	calls []string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*spec.MasterSpec),
	}
}

func (s *MockStore) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	s.calls = append(s.calls, "save:"+name)
	s.data[name] = ms
	return nil
}

func (s *MockStore) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	s.calls = append(s.calls, "load:"+name)
	ms, ok := s.data[name]
	if !ok {
		return nil, ports.ErrSpecNotFound
	}
	return ms, nil
}

func (s *MockStore) Delete(ctx context.Context, name string) error {
	s.calls = append(s.calls, "delete:"+name)
	delete(s.data, name)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.calls = append(s.calls, "list")
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
