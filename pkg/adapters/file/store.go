package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

// Store implements ports.SpecStore on the local filesystem, one file per spec.
// The file extension decides the encoding; Save writes Format, Load reads
// whichever supported extension is present.
type Store struct {
	BasePath string
	Format   codec.Format
}

// New creates a Store rooted at basePath writing the given format.
// If basePath is empty, it defaults to ".netspec/specs"; an empty format means YAML.
func New(basePath string, format codec.Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".netspec", "specs")
	}
	if format == "" {
		format = codec.YAML
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) path(name string, f codec.Format) string {
	return filepath.Join(s.BasePath, name+f.Ext())
}

// find returns the path and format of the stored file for name.
func (s *Store) find(name string) (string, codec.Format, error) {
	formats := append([]codec.Format{s.Format}, codec.Formats()...)
	for _, f := range formats {
		p := s.path(name, f)
		if _, err := os.Stat(p); err == nil {
			return p, f, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("stat spec file: %w", err)
		}
	}
	return "", "", ports.ErrSpecNotFound
}

// Save encodes the spec and writes it atomically: the data goes to a temp
// file in the same directory, is synced, then renamed over the destination.
// Files of the same name in other formats are removed afterwards.
func (s *Store) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if ms == nil {
		return fmt.Errorf("save %s: nil spec", name)
	}

	data, err := codec.Marshal(s.Format, ms)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure spec directory: %w", err)
	}

	destPath := s.path(name, s.Format)

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows cannot rename over an existing file. Elsewhere rename replaces
	// atomically and readers never see the spec missing.
	if runtime.GOOS == "windows" {
		if err := os.Remove(destPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove existing spec file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to spec file: %w", err)
	}

	for _, f := range codec.Formats() {
		if f == s.Format {
			continue
		}
		if err := os.Remove(s.path(name, f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale %s copy: %w", f, err)
		}
	}
	return nil
}

// Load reads and decodes the spec file.
func (s *Store) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}

	p, f, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.ErrSpecNotFound
		}
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var ms spec.MasterSpec
	if err := codec.Unmarshal(f, data, &ms); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &ms, nil
}

// Delete removes the spec in every format.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	for _, f := range codec.Formats() {
		if err := os.Remove(s.path(name, f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete spec file: %w", err)
		}
	}
	return nil
}

// List returns the names of all spec files in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if f, err := codec.ParseFormat(ext); err != nil || f.Ext() != ext {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if ports.ValidateName(name) != nil || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
