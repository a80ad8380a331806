package dsl

import (
	"maps"

	"github.com/aretw0/netspec/pkg/spec"
)

// Params are the string parameters of a module selector.
type Params map[string]string

// ComponentBuilder provides a fluent API for configuring one component.
type ComponentBuilder struct {
	comp    *spec.ComponentSpec
	builder *Builder
}

func selector(name string, params []Params) *spec.RegisteredModuleSpec {
	m := &spec.RegisteredModuleSpec{RegisteredName: spec.Ptr(name)}
	for _, p := range params {
		if m.Parameters == nil {
			m.Parameters = make(map[string]string, len(p))
		}
		maps.Copy(m.Parameters, p)
	}
	return m
}

// TransitionSystem selects the transition system.
func (c *ComponentBuilder) TransitionSystem(name string, params ...Params) *ComponentBuilder {
	c.comp.TransitionSystem = selector(name, params)
	return c
}

// Network selects the network unit.
func (c *ComponentBuilder) Network(name string, params ...Params) *ComponentBuilder {
	c.comp.NetworkUnit = selector(name, params)
	return c
}

// Backend selects the component backend.
func (c *ComponentBuilder) Backend(name string, params ...Params) *ComponentBuilder {
	c.comp.Backend = selector(name, params)
	return c
}

// Builder selects the component builder.
func (c *ComponentBuilder) Builder(name string, params ...Params) *ComponentBuilder {
	c.comp.ComponentBuilder = selector(name, params)
	return c
}

// Actions sets the size of the action space.
func (c *ComponentBuilder) Actions(n int32) *ComponentBuilder {
	c.comp.NumActions = spec.Ptr(n)
	return c
}

// Attention names the component this one attends over.
func (c *ComponentBuilder) Attention(component string) *ComponentBuilder {
	c.comp.AttentionComponent = spec.Ptr(component)
	return c
}

// Resource declares a named resource made of the given parts.
func (c *ComponentBuilder) Resource(name string, parts ...*spec.Part) *ComponentBuilder {
	c.comp.Resource = append(c.comp.Resource, &spec.Resource{
		Name: spec.Ptr(name),
		Part: parts,
	})
	return c
}

// Part describes one file of a resource.
func Part(pattern, fileFormat, recordFormat string) *spec.Part {
	return &spec.Part{
		FilePattern:  spec.Ptr(pattern),
		FileFormat:   spec.Ptr(fileFormat),
		RecordFormat: spec.Ptr(recordFormat),
	}
}

// FixedOption sets optional fields of a fixed feature channel.
type FixedOption func(*spec.FixedFeatureChannel)

// Pretrained points the channel at a component resource holding a
// pretrained embedding matrix.
func Pretrained(resource string) FixedOption {
	return func(f *spec.FixedFeatureChannel) {
		f.PretrainedEmbeddingMatrix = &spec.Resource{Name: spec.Ptr(resource)}
	}
}

// Vocab points the channel at a component resource holding its vocabulary.
func Vocab(resource string) FixedOption {
	return func(f *spec.FixedFeatureChannel) {
		f.Vocab = &spec.Resource{Name: spec.Ptr(resource)}
	}
}

// Constant marks the channel's embedding as not trained.
func Constant() FixedOption {
	return func(f *spec.FixedFeatureChannel) { f.IsConstant = spec.Ptr(true) }
}

// PredicateMap sets the predicate mapping of the channel.
func PredicateMap(m string) FixedOption {
	return func(f *spec.FixedFeatureChannel) { f.PredicateMap = spec.Ptr(m) }
}

// Fixed adds a fixed feature channel. Use spec.NotEmbedded as dim to feed ids
// to the network directly.
func (c *ComponentBuilder) Fixed(name, fml string, dim, vocabSize, size int32, opts ...FixedOption) *ComponentBuilder {
	f := &spec.FixedFeatureChannel{
		Name:           spec.Ptr(name),
		Fml:            spec.Ptr(fml),
		EmbeddingDim:   spec.Ptr(dim),
		VocabularySize: spec.Ptr(vocabSize),
		Size:           spec.Ptr(size),
	}
	for _, opt := range opts {
		opt(f)
	}
	c.comp.FixedFeature = append(c.comp.FixedFeature, f)
	return c
}

// Linked adds a linked feature channel reading layer of the source component
// through translator. The channel is named after the source component.
func (c *ComponentBuilder) Linked(source, fml string, dim, size int32, translator, layer string) *ComponentBuilder {
	return c.LinkedAs(source, source, fml, dim, size, translator, layer)
}

// LinkedAs is Linked with an explicit channel name.
func (c *ComponentBuilder) LinkedAs(name, source, fml string, dim, size int32, translator, layer string) *ComponentBuilder {
	c.comp.LinkedFeature = append(c.comp.LinkedFeature, &spec.LinkedFeatureChannel{
		Name:             spec.Ptr(name),
		Fml:              spec.Ptr(fml),
		EmbeddingDim:     spec.Ptr(dim),
		Size:             spec.Ptr(size),
		SourceComponent:  spec.Ptr(source),
		SourceTranslator: spec.Ptr(translator),
		SourceLayer:      spec.Ptr(layer),
	})
	return c
}

// Add ends this component and starts (or resumes) another.
func (c *ComponentBuilder) Add(name string) *ComponentBuilder {
	return c.builder.Add(name)
}
