// Package agents implements spec §4.J's registry and the three published
// handlers (§4.L, §4.M, and search.find via the retriever directly).
// Grounded in the teacher's specialists.Registry sync.RWMutex shape,
// generalized to explicit startup registration per spec §9's note that
// import-side-effect registration is a latent ordering bug to avoid.
package agents

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler executes one agent call given a typed parameter map, returning a
// result map or an error. Parameter validation happens inside the handler,
// not the registry, per spec §9.
type Handler func(ctx context.Context, params map[string]any) (map[string]any, error)

// Registry is a process-wide, read-mostly name -> handler table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry. Call Register for each agent
// during startup, before serving any request.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under name. Intended for startup use only.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler registered under name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered agent names, sorted, for the router's
// whitelist.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch looks up name and invokes it. An unregistered name yields an
// error naming the agent; the HTTP handler reports it in a 200 response.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (map[string]any, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("agent %q is not registered", name)
	}
	return h(ctx, params)
}
