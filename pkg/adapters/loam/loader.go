// Package loam reads specs from a Loam workspace: markdown (or json/yaml)
// documents whose frontmatter holds a MasterSpec and whose body describes it.
package loam

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

// SpecMetadata is the frontmatter of a spec document. Component entries stay
// untyped here and are decoded strictly by codec.FromMap.
type SpecMetadata struct {
	// Name overrides the name derived from the file name.
	Name         string           `json:"name" mapstructure:"name"`
	Component    []map[string]any `json:"component" mapstructure:"component"`
	DebugTracing *bool            `json:"debug_tracing" mapstructure:"debug_tracing"`
}

// Loader adapts a Loam repository to ports.SpecLoader.
type Loader struct {
	Repo *loam.TypedRepository[SpecMetadata]
}

// New creates a new Loam loader.
func New(repo *loam.TypedRepository[SpecMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only Loam repository at path. Strict mode makes
// every adapter (markdown, json, yaml) report numbers the same way.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[SpecMetadata](repo)), nil
}

// Load decodes the frontmatter of the named document.
func (l *Loader) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	meta, _, err := l.get(ctx, name)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if len(meta.Component) > 0 {
		components := make([]any, len(meta.Component))
		for i, c := range meta.Component {
			components[i] = c
		}
		raw["component"] = components
	}
	if meta.DebugTracing != nil {
		raw["debug_tracing"] = *meta.DebugTracing
	}

	var ms spec.MasterSpec
	if err := codec.FromMap(raw, &ms); err != nil {
		return nil, fmt.Errorf("spec %s: %w", name, err)
	}
	return &ms, nil
}

// Describe returns the document body, trimmed.
func (l *Loader) Describe(ctx context.Context, name string) (string, error) {
	_, body, err := l.get(ctx, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

func (l *Loader) get(ctx context.Context, name string) (SpecMetadata, string, error) {
	if err := ports.ValidateName(name); err != nil {
		return SpecMetadata{}, "", err
	}

	// Loam resolves "en" to en.md, en.yaml or en.json.
	doc, err := l.Repo.Get(ctx, name)
	if err == nil {
		return doc.Data, doc.Content, nil
	}
	if !isNotFound(err) {
		return SpecMetadata{}, "", fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	// fall back to documents renamed through frontmatter
	docs, listErr := l.Repo.List(ctx)
	if listErr != nil {
		return SpecMetadata{}, "", fmt.Errorf("loam list failed: %w", listErr)
	}
	for _, d := range docs {
		if d.Data.Name == name {
			return d.Data, d.Content, nil
		}
	}
	return SpecMetadata{}, "", ports.ErrSpecNotFound
}

// List returns the names of documents that declare components. Documents
// without a component list are treated as notes and skipped.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Data.Component) == 0 {
			continue
		}
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: spec '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no such file")
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
