package ports

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/netspec/pkg/spec"
)

var (
	// ErrSpecNotFound is returned by Load for a name the store does not hold.
	ErrSpecNotFound = errors.New("spec not found")
	// ErrInvalidName is returned for names that are empty or not path-safe.
	ErrInvalidName = errors.New("invalid spec name")
	// ErrReadOnly is returned by stores that cannot be written through netspec.
	ErrReadOnly = errors.New("store is read-only")
)

// SpecLoader retrieves stored specs by name.
type SpecLoader interface {
	// Load returns a copy of the named spec, or ErrSpecNotFound.
	Load(ctx context.Context, name string) (*spec.MasterSpec, error)

	// List returns the stored names in sorted order.
	List(ctx context.Context) ([]string, error)
}

// SpecStore is a SpecLoader that can also be written.
type SpecStore interface {
	SpecLoader

	// Save stores a copy of ms under name, replacing any previous spec.
	Save(ctx context.Context, name string, ms *spec.MasterSpec) error

	// Delete removes the named spec. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName reports whether name can be used as a spec name. Names are
// used as file names and keys, so they are limited to letters, digits, dot,
// dash and underscore and may not start with a dot or dash.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || len(name) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ReadOnly adapts a SpecLoader to SpecStore. Save and Delete fail with ErrReadOnly.
func ReadOnly(l SpecLoader) SpecStore {
	return readOnly{l}
}

type readOnly struct {
	SpecLoader
}

func (readOnly) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	return fmt.Errorf("save %s: %w", name, ErrReadOnly)
}

func (readOnly) Delete(ctx context.Context, name string) error {
	return fmt.Errorf("delete %s: %w", name, ErrReadOnly)
}

func (r readOnly) Unwrap() SpecLoader { return r.SpecLoader }

// Describer is implemented by loaders that keep free-text notes next to specs.
type Describer interface {
	Describe(ctx context.Context, name string) (string, error)
}

// Unwrapper is implemented by decorators to expose the loader they wrap.
type Unwrapper interface {
	Unwrap() SpecLoader
}

// Describe returns the description of name from the first Describer found by
// unwrapping l. ok is false when no layer can describe specs.
func Describe(ctx context.Context, l SpecLoader, name string) (desc string, ok bool, err error) {
	for l != nil {
		if d, is := l.(Describer); is {
			desc, err = d.Describe(ctx, name)
			return desc, true, err
		}
		u, is := l.(Unwrapper)
		if !is {
			break
		}
		l = u.Unwrap()
	}
	return "", false, nil
}
