package spec

import (
	"fmt"
	"maps"
)

// Message is implemented by every top-level record that can be encoded on its own.
type Message interface {
	MessageName() string
}

// MasterSpec is the top-level specification of a pipeline.
// The order of Component encodes dependencies: a component may only reference
// components that appear before it.
type MasterSpec struct {
	Component    []*ComponentSpec `json:"component,omitempty" yaml:"component,omitempty" mapstructure:"component"`
	DebugTracing *bool            `json:"debug_tracing,omitempty" yaml:"debug_tracing,omitempty" mapstructure:"debug_tracing"`
}

func (*MasterSpec) MessageName() string { return "MasterSpec" }

func (m *MasterSpec) GetComponent() []*ComponentSpec {
	if m == nil {
		return nil
	}
	return m.Component
}

func (m *MasterSpec) GetDebugTracing() bool {
	if m == nil {
		return false
	}
	return deref(m.DebugTracing, false)
}

// Names returns the component names in pipeline order.
func (m *MasterSpec) Names() []string {
	names := make([]string, 0, len(m.GetComponent()))
	for _, c := range m.GetComponent() {
		names = append(names, c.GetName())
	}
	return names
}

// ComponentIndex returns the position of the first component with the given name, or -1.
func (m *MasterSpec) ComponentIndex(name string) int {
	for i, c := range m.GetComponent() {
		if c.GetName() == name {
			return i
		}
	}
	return -1
}

// ComponentByName returns the first component with the given name.
func (m *MasterSpec) ComponentByName(name string) (*ComponentSpec, error) {
	idx := m.ComponentIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("component %q: %w", name, ErrNotFound)
	}
	return m.Component[idx], nil
}

// Clone returns a deep copy.
func (m *MasterSpec) Clone() *MasterSpec {
	if m == nil {
		return nil
	}
	out := &MasterSpec{DebugTracing: clonePtr(m.DebugTracing)}
	if m.Component != nil {
		out.Component = make([]*ComponentSpec, len(m.Component))
		for i, c := range m.Component {
			out.Component[i] = c.Clone()
		}
	}
	return out
}

// ComponentSpec describes one stage of the pipeline.
type ComponentSpec struct {
	Name               *string                 `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	TransitionSystem   *RegisteredModuleSpec   `json:"transition_system,omitempty" yaml:"transition_system,omitempty" mapstructure:"transition_system"`
	Resource           []*Resource             `json:"resource,omitempty" yaml:"resource,omitempty" mapstructure:"resource"`
	FixedFeature       []*FixedFeatureChannel  `json:"fixed_feature,omitempty" yaml:"fixed_feature,omitempty" mapstructure:"fixed_feature"`
	LinkedFeature      []*LinkedFeatureChannel `json:"linked_feature,omitempty" yaml:"linked_feature,omitempty" mapstructure:"linked_feature"`
	NetworkUnit        *RegisteredModuleSpec   `json:"network_unit,omitempty" yaml:"network_unit,omitempty" mapstructure:"network_unit"`
	Backend            *RegisteredModuleSpec   `json:"backend,omitempty" yaml:"backend,omitempty" mapstructure:"backend"`
	NumActions         *int32                  `json:"num_actions,omitempty" yaml:"num_actions,omitempty" mapstructure:"num_actions"`
	AttentionComponent *string                 `json:"attention_component,omitempty" yaml:"attention_component,omitempty" mapstructure:"attention_component"`
	ComponentBuilder   *RegisteredModuleSpec   `json:"component_builder,omitempty" yaml:"component_builder,omitempty" mapstructure:"component_builder"`
}

func (*ComponentSpec) MessageName() string { return "ComponentSpec" }

func (c *ComponentSpec) GetName() string {
	if c == nil {
		return ""
	}
	return deref(c.Name, "")
}

func (c *ComponentSpec) GetTransitionSystem() *RegisteredModuleSpec {
	if c == nil {
		return nil
	}
	return c.TransitionSystem
}

func (c *ComponentSpec) GetResource() []*Resource {
	if c == nil {
		return nil
	}
	return c.Resource
}

func (c *ComponentSpec) GetFixedFeature() []*FixedFeatureChannel {
	if c == nil {
		return nil
	}
	return c.FixedFeature
}

func (c *ComponentSpec) GetLinkedFeature() []*LinkedFeatureChannel {
	if c == nil {
		return nil
	}
	return c.LinkedFeature
}

func (c *ComponentSpec) GetNetworkUnit() *RegisteredModuleSpec {
	if c == nil {
		return nil
	}
	return c.NetworkUnit
}

func (c *ComponentSpec) GetBackend() *RegisteredModuleSpec {
	if c == nil {
		return nil
	}
	return c.Backend
}

func (c *ComponentSpec) GetNumActions() int32 {
	if c == nil {
		return 0
	}
	return deref(c.NumActions, 0)
}

func (c *ComponentSpec) GetAttentionComponent() string {
	if c == nil {
		return ""
	}
	return deref(c.AttentionComponent, "")
}

func (c *ComponentSpec) GetComponentBuilder() *RegisteredModuleSpec {
	if c == nil {
		return nil
	}
	return c.ComponentBuilder
}

// ResourceByName returns the component resource with the given name.
func (c *ComponentSpec) ResourceByName(name string) (*Resource, error) {
	for _, r := range c.GetResource() {
		if r.GetName() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("resource %q: %w", name, ErrNotFound)
}

// Clone returns a deep copy.
func (c *ComponentSpec) Clone() *ComponentSpec {
	if c == nil {
		return nil
	}
	out := &ComponentSpec{
		Name:               clonePtr(c.Name),
		TransitionSystem:   c.TransitionSystem.Clone(),
		NetworkUnit:        c.NetworkUnit.Clone(),
		Backend:            c.Backend.Clone(),
		NumActions:         clonePtr(c.NumActions),
		AttentionComponent: clonePtr(c.AttentionComponent),
		ComponentBuilder:   c.ComponentBuilder.Clone(),
	}
	if c.Resource != nil {
		out.Resource = make([]*Resource, len(c.Resource))
		for i, r := range c.Resource {
			out.Resource[i] = r.Clone()
		}
	}
	if c.FixedFeature != nil {
		out.FixedFeature = make([]*FixedFeatureChannel, len(c.FixedFeature))
		for i, f := range c.FixedFeature {
			out.FixedFeature[i] = f.Clone()
		}
	}
	if c.LinkedFeature != nil {
		out.LinkedFeature = make([]*LinkedFeatureChannel, len(c.LinkedFeature))
		for i, l := range c.LinkedFeature {
			out.LinkedFeature[i] = l.Clone()
		}
	}
	return out
}

// RegisteredModuleSpec selects an implementation by registered name and
// passes it string parameters.
type RegisteredModuleSpec struct {
	RegisteredName *string           `json:"registered_name,omitempty" yaml:"registered_name,omitempty" mapstructure:"registered_name"`
	Parameters     map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

func (*RegisteredModuleSpec) MessageName() string { return "RegisteredModuleSpec" }

func (r *RegisteredModuleSpec) GetRegisteredName() string {
	if r == nil {
		return ""
	}
	return deref(r.RegisteredName, "")
}

func (r *RegisteredModuleSpec) GetParameters() map[string]string {
	if r == nil {
		return nil
	}
	return r.Parameters
}

// Param returns a parameter value and whether it was set.
func (r *RegisteredModuleSpec) Param(key string) (string, bool) {
	v, ok := r.GetParameters()[key]
	return v, ok
}

func (r *RegisteredModuleSpec) Clone() *RegisteredModuleSpec {
	if r == nil {
		return nil
	}
	return &RegisteredModuleSpec{
		RegisteredName: clonePtr(r.RegisteredName),
		Parameters:     maps.Clone(r.Parameters),
	}
}

// Resource is a named, externally stored input such as a vocabulary or an
// embedding matrix. It only describes where the data lives.
type Resource struct {
	Name *string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Part []*Part `json:"part,omitempty" yaml:"part,omitempty" mapstructure:"part"`
}

func (*Resource) MessageName() string { return "Resource" }

func (r *Resource) GetName() string {
	if r == nil {
		return ""
	}
	return deref(r.Name, "")
}

func (r *Resource) GetPart() []*Part {
	if r == nil {
		return nil
	}
	return r.Part
}

func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	out := &Resource{Name: clonePtr(r.Name)}
	if r.Part != nil {
		out.Part = make([]*Part, len(r.Part))
		for i, p := range r.Part {
			out.Part[i] = p.Clone()
		}
	}
	return out
}

// Part is one file (or file pattern) of a Resource.
type Part struct {
	FilePattern  *string `json:"file_pattern,omitempty" yaml:"file_pattern,omitempty" mapstructure:"file_pattern"`
	FileFormat   *string `json:"file_format,omitempty" yaml:"file_format,omitempty" mapstructure:"file_format"`
	RecordFormat *string `json:"record_format,omitempty" yaml:"record_format,omitempty" mapstructure:"record_format"`
}

func (p *Part) GetFilePattern() string {
	if p == nil {
		return ""
	}
	return deref(p.FilePattern, "")
}

func (p *Part) GetFileFormat() string {
	if p == nil {
		return ""
	}
	return deref(p.FileFormat, "")
}

func (p *Part) GetRecordFormat() string {
	if p == nil {
		return ""
	}
	return deref(p.RecordFormat, "")
}

func (p *Part) Clone() *Part {
	if p == nil {
		return nil
	}
	return &Part{
		FilePattern:  clonePtr(p.FilePattern),
		FileFormat:   clonePtr(p.FileFormat),
		RecordFormat: clonePtr(p.RecordFormat),
	}
}
