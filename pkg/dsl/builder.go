package dsl

import (
	"fmt"

	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
)

// Builder assembles a MasterSpec. Components keep the order of their first Add.
type Builder struct {
	components []*ComponentBuilder
	byName     map[string]*ComponentBuilder
	debug      bool
}

// New creates an empty pipeline builder.
func New() *Builder {
	return &Builder{byName: make(map[string]*ComponentBuilder)}
}

// Add starts a component. If a component with the same name was already
// added, its builder is returned so configuration can continue.
func (b *Builder) Add(name string) *ComponentBuilder {
	if cb, ok := b.byName[name]; ok {
		return cb
	}
	cb := &ComponentBuilder{
		comp:    &spec.ComponentSpec{Name: spec.Ptr(name)},
		builder: b,
	}
	b.components = append(b.components, cb)
	b.byName[name] = cb
	return cb
}

// DebugTracing turns on the trainer's per-step tracing.
func (b *Builder) DebugTracing() *Builder {
	b.debug = true
	return b
}

type buildConfig struct {
	opts []validator.Option
}

// Option adjusts the validation Build runs.
type Option func(*buildConfig)

// AllowSelfLinks accepts linked features that read the declaring component.
func AllowSelfLinks() Option {
	return func(c *buildConfig) { c.opts = append(c.opts, validator.AllowSelfLinks()) }
}

// WithRegistry checks module selectors and parameters against r.
func WithRegistry(r *registry.Registry) Option {
	return func(c *buildConfig) { c.opts = append(c.opts, validator.WithRegistry(r)) }
}

// Spec returns the spec as built so far, without validation.
func (b *Builder) Spec() *spec.MasterSpec {
	ms := &spec.MasterSpec{}
	if b.debug {
		ms.DebugTracing = spec.Ptr(true)
	}
	for _, cb := range b.components {
		ms.Component = append(ms.Component, cb.comp.Clone())
	}
	return ms
}

// Build validates and returns the spec. The result shares no memory with the
// builder.
func (b *Builder) Build(opts ...Option) (*spec.MasterSpec, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	ms := b.Spec()
	if err := validator.MasterSpec(ms, cfg.opts...); err != nil {
		return nil, fmt.Errorf("build spec: %w", err)
	}
	return ms, nil
}

// MustBuild is Build for static pipelines; it panics on an invalid spec.
func (b *Builder) MustBuild(opts ...Option) *spec.MasterSpec {
	ms, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return ms
}
