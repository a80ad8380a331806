package netspec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/netspec/internal/presentation/graph"
	"github.com/aretw0/netspec/internal/presentation/tui"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/adapters/file"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
)

// Catalog is the high-level entry point for the netspec library.
// It pairs a SpecStore with validation, rendering and change notification,
// and is what the HTTP, MCP and CLI front ends are built on.
type Catalog struct {
	store          ports.SpecStore
	registry       *registry.Registry
	logger         *slog.Logger
	metrics        *observability.Metrics
	allowSelfLinks bool
	events         *broker
	Name           string
}

// Option defines a functional option for configuring the Catalog.
type Option func(*Catalog)

// WithStore injects a custom SpecStore, bypassing the default file store.
func WithStore(s ports.SpecStore) Option {
	return func(c *Catalog) {
		c.store = s
	}
}

// WithRegistry checks module selectors against r. The stock registry is used otherwise.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Catalog) {
		c.registry = r
	}
}

// WithLogger sets a custom structured logger for the catalog.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithMetrics records validation outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Catalog) {
		c.metrics = m
	}
}

// WithSelfLinks accepts linked features that read from their own component.
func WithSelfLinks() Option {
	return func(c *Catalog) {
		c.allowSelfLinks = true
	}
}

// New initializes a Catalog.
// By default, specs live as YAML files under dir.
// If WithStore is provided, dir is only used as a descriptive name.
func New(dir string, opts ...Option) (*Catalog, error) {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom store is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		c.Name = filepath.Base(absPath)
		c.store = file.New(absPath, "")
	} else if dir != "" {
		c.Name = filepath.Base(dir)
	}

	if c.registry == nil {
		c.registry = registry.Default()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.Name != "" {
		c.logger = c.logger.With("catalog", c.Name)
	}
	c.events = newBroker(c.logger)

	return c, nil
}

// Issue is a single rule violation: the path of the offending field and
// what is wrong with it.
type Issue = validator.Issue

// ErrInvalid is matched by every error Put returns for a spec that fails
// validation.
var ErrInvalid = validator.ErrInvalid

// Issues returns the violations carried by err, or nil if err is not a
// validation error.
func Issues(err error) []Issue {
	return validator.Issues(err)
}

// Report is the outcome of validating one record.
type Report struct {
	Kind   string  `json:"kind"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

func (c *Catalog) validatorOptions() []validator.Option {
	opts := []validator.Option{validator.WithRegistry(c.registry)}
	if c.allowSelfLinks {
		opts = append(opts, validator.AllowSelfLinks())
	}
	return opts
}

// Validate checks any top-level record. An invalid record is reported, not
// returned as an error.
func (c *Catalog) Validate(m spec.Message) *Report {
	return c.ValidateWith(m, nil)
}

// ValidateWith is Validate with the pipeline a TrainTarget or
// TrainingGridSpec trains, so component weights and max_index can be checked
// against its component count. A nil master skips those checks.
func (c *Catalog) ValidateWith(m spec.Message, master *spec.MasterSpec) *Report {
	var err error
	switch v := m.(type) {
	case *spec.TrainTarget:
		err = validator.TrainTarget(v, master)
	case *spec.TrainingGridSpec:
		err = validator.TrainingGrid(v, master)
	default:
		err = validator.Message(m, c.validatorOptions()...)
	}
	c.metrics.ObserveValidation(m.MessageName(), err)

	issues := validator.Issues(err)
	if issues == nil {
		issues = []Issue{}
	}
	return &Report{Kind: m.MessageName(), Valid: err == nil, Issues: issues}
}

// Get loads a spec by name.
func (c *Catalog) Get(ctx context.Context, name string) (*spec.MasterSpec, error) {
	return c.store.Load(ctx, name)
}

// List returns the stored spec names in sorted order.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// Put validates and saves a spec. A rejected spec yields an error matching
// ErrInvalid; Issues reads what was wrong.
func (c *Catalog) Put(ctx context.Context, name string, ms *spec.MasterSpec) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if ms == nil {
		return fmt.Errorf("spec %q: nil spec", name)
	}
	err := validator.MasterSpec(ms, c.validatorOptions()...)
	c.metrics.ObserveValidation(ms.MessageName(), err)
	if err != nil {
		c.logger.Debug("spec rejected", "spec", name, "issues", len(validator.Issues(err)))
		return err
	}
	if err := c.store.Save(ctx, name, ms); err != nil {
		return err
	}
	c.events.publish(Event{Type: EventSaved, Name: name})
	return nil
}

// Delete removes a spec. Deleting a missing spec is not an error.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	if err := c.store.Delete(ctx, name); err != nil {
		return err
	}
	c.events.publish(Event{Type: EventDeleted, Name: name})
	return nil
}

// Graph renders a stored spec as a Mermaid flowchart with its invalid
// components highlighted.
func (c *Catalog) Graph(ctx context.Context, name string) (string, error) {
	ms, err := c.store.Load(ctx, name)
	if err != nil {
		return "", err
	}
	return c.Render(ms), nil
}

// Render draws ms as a Mermaid flowchart with its invalid components highlighted.
func (c *Catalog) Render(ms *spec.MasterSpec) string {
	issues := validator.Issues(validator.MasterSpec(ms, c.validatorOptions()...))
	var overlay *graph.GraphOverlay
	if len(issues) > 0 {
		overlay = graph.OverlayFromIssues(ms, issues)
	}
	return graph.GenerateMermaid(ms, overlay)
}

// Describe summarizes a stored spec as markdown, including the prose the
// store keeps next to it, if any.
func (c *Catalog) Describe(ctx context.Context, name string) (string, error) {
	ms, err := c.store.Load(ctx, name)
	if err != nil {
		return "", err
	}
	desc, _, err := ports.Describe(ctx, c.store, name)
	if err != nil {
		return "", err
	}
	issues := validator.Issues(validator.MasterSpec(ms, c.validatorOptions()...))
	return tui.Summary(name, desc, ms, issues, true), nil
}

// Modules returns a copy of the registered modules by kind, then name.
func (c *Catalog) Modules() map[registry.Kind]map[string]registry.Entry {
	return c.registry.Snapshot()
}

// Registry returns the registry selectors are checked against.
func (c *Catalog) Registry() *registry.Registry {
	return c.registry
}

// Store returns the underlying SpecStore.
func (c *Catalog) Store() ports.SpecStore {
	return c.store
}
