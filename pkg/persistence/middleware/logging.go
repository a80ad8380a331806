package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

type loggingMiddleware struct {
	next   ports.SpecStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at
// warn. ErrSpecNotFound on Load is an expected outcome and stays at debug.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.SpecStore) ports.SpecStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, name string, start time.Time, err error) {
	attrs := []any{"op", op, "duration", time.Since(start)}
	if name != "" {
		attrs = append(attrs, "spec", name)
	}
	if err != nil && !errors.Is(err, ports.ErrSpecNotFound) {
		m.logger.WarnContext(ctx, "store operation failed", append(attrs, "error", err)...)
		return
	}
	m.logger.DebugContext(ctx, "store operation", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	start := time.Now()
	err := m.next.Save(ctx, name, ms)
	m.log(ctx, "save", name, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	start := time.Now()
	ms, err := m.next.Load(ctx, name)
	m.log(ctx, "load", name, start, err)
	return ms, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name)
	m.log(ctx, "delete", name, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return names, err
}

func (m *loggingMiddleware) Unwrap() ports.SpecLoader { return m.next }
