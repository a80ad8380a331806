package middleware

import (
	"context"
	"time"

	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
)

type metricsMiddleware struct {
	next    ports.SpecStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware counts and times store operations.
func NewMetricsMiddleware(m *observability.Metrics) Middleware {
	return func(next ports.SpecStore) ports.SpecStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) Save(ctx context.Context, name string, ms *spec.MasterSpec) error {
	start := time.Now()
	err := m.next.Save(ctx, name, ms)
	m.metrics.ObserveStore("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, name string) (*spec.MasterSpec, error) {
	start := time.Now()
	ms, err := m.next.Load(ctx, name)
	m.metrics.ObserveStore("load", start, err)
	return ms, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name)
	m.metrics.ObserveStore("delete", start, err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := m.next.List(ctx)
	m.metrics.ObserveStore("list", start, err)
	return names, err
}

func (m *metricsMiddleware) Unwrap() ports.SpecLoader { return m.next }
