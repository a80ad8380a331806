package middleware

import "github.com/aretw0/netspec/pkg/ports"

// Middleware allows wrapping a SpecStore to add behavior.
type Middleware func(ports.SpecStore) ports.SpecStore

// Chain wraps store with mws. The first middleware is the outermost, so it
// sees a call first and its result last.
func Chain(store ports.SpecStore, mws ...Middleware) ports.SpecStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
