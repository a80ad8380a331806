package middleware

import (
	"context"

	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
)

// ValidationOption tunes the rules NewValidationMiddleware enforces.
type ValidationOption = validator.Option

// ErrInvalid is matched by every error a rejected Save returns.
var ErrInvalid = validator.ErrInvalid

// AllowSelfLinks accepts linked features whose source is the declaring
// component.
func AllowSelfLinks() ValidationOption { return validator.AllowSelfLinks() }

// WithRegistry checks registered names against r instead of the default
// registry.
func WithRegistry(r *registry.Registry) ValidationOption { return validator.WithRegistry(r) }

type validationMiddleware struct {
	ports.SpecStore
	opts []validator.Option
}

// NewValidationMiddleware rejects Save of specs that fail validation. The
// returned error matches ErrInvalid and nothing is written.
func NewValidationMiddleware(opts ...ValidationOption) Middleware {
	return func(next ports.SpecStore) ports.SpecStore {
		return &validationMiddleware{SpecStore: next, opts: opts}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	if err := validator.MasterSpec(ms, m.opts...); err != nil {
		return err
	}
	return m.SpecStore.Save(ctx, name, ms)
}

func (m *validationMiddleware) Unwrap() ports.SpecLoader { return m.SpecStore }
