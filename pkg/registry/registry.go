// Package registry maps the names a spec uses to select modules to the
// parameter schemas those modules accept.
//
// The trainer that consumes specs owns the real implementations; the registry
// only lets netspec check that a selector names something known and that its
// parameters are well formed.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/netspec/pkg/schema"
	"github.com/aretw0/netspec/pkg/spec"
	"gopkg.in/yaml.v3"
)

// Kind groups module names. The same name may exist under different kinds.
type Kind string

const (
	KindTransitionSystem Kind = "transition_system"
	KindNetworkUnit      Kind = "network_unit"
	KindBackend          Kind = "backend"
	KindComponentBuilder Kind = "component_builder"
)

// Kinds returns every kind in the order they appear on a ComponentSpec.
func Kinds() []Kind {
	return []Kind{KindTransitionSystem, KindNetworkUnit, KindBackend, KindComponentBuilder}
}

var (
	ErrUnknownKind   = errors.New("unknown module kind")
	ErrUnknownModule = errors.New("unknown module")
)

// Entry describes one registered module.
type Entry struct {
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Params      schema.Schema `json:"params,omitempty" yaml:"params,omitempty"`
	// Strict rejects parameters the schema does not declare.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// Registry manages the known modules. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[Kind]map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{modules: make(map[Kind]map[string]Entry)}
	for _, k := range Kinds() {
		r.modules[k] = make(map[string]Entry)
	}
	return r
}

func validKind(kind Kind) error {
	for _, k := range Kinds() {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Register adds a module. An existing entry with the same kind and name is
// overwritten.
func (r *Registry) Register(kind Kind, name string, e Entry) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("register %s: empty name", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[kind][name] = e
	return nil
}

// Lookup returns the entry for a module.
func (r *Registry) Lookup(kind Kind, name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.modules[kind][name]
	return e, ok
}

// Names lists the registered names of a kind in sorted order.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules[kind]))
	for n := range r.modules[kind] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the whole registry keyed by kind then name.
func (r *Registry) Snapshot() map[Kind]map[string]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Kind]map[string]Entry, len(r.modules))
	for k, byName := range r.modules {
		cp := make(map[string]Entry, len(byName))
		for n, e := range byName {
			cp[n] = e
		}
		out[k] = cp
	}
	return out
}

// Check verifies that m names a registered module of the given kind and that
// its parameters satisfy the module's schema. A nil selector is not checked.
func (r *Registry) Check(kind Kind, m *spec.RegisteredModuleSpec) error {
	if m == nil {
		return nil
	}
	if err := validKind(kind); err != nil {
		return err
	}
	name := m.GetRegisteredName()
	e, ok := r.Lookup(kind, name)
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrUnknownModule, kind, name)
	}

	params := schema.Params(m.GetParameters())
	var err error
	if e.Strict {
		err = schema.ValidateStrict(e.Params, params)
	} else {
		err = schema.Validate(e.Params, params)
	}
	if err != nil {
		return fmt.Errorf("%s %q parameters: %w", kind, name, err)
	}
	return nil
}

// LoadYAML merges module definitions into the registry. The document maps
// kind to name to entry:
//
//	network_unit:
//	  GatedNetwork:
//	    description: gated feed-forward
//	    strict: true
//	    params:
//	      hidden_layer_sizes: "[int]"
func (r *Registry) LoadYAML(data []byte) error {
	var doc map[Kind]map[string]Entry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode registry: %w", err)
	}
	kinds := make([]string, 0, len(doc))
	for k := range doc {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		for name, e := range doc[Kind(k)] {
			if err := r.Register(Kind(k), name, e); err != nil {
				return err
			}
		}
	}
	return nil
}
