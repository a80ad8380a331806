// Package middleware provides decorators for ports.SpecStore: a validation
// gate on Save, structured logging and Prometheus metrics.
package middleware
