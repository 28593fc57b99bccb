// internal/game/registry.go
package game

import (
	"sort"
	"sync"
)

// Registry maps game ids to their modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry builds a registry holding the given modules.
func NewRegistry(modules ...Module) *Registry {
	r := &Registry{modules: make(map[string]Module)}
	for _, m := range modules {
		r.Register(m)
	}
	return r
}

// Register adds or replaces a module under its Info().ID.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.Info().ID] = m
}

// Get looks up a module by game id.
func (r *Registry) Get(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// Lookup is Get returning an INVALID_GAME domain error for unknown ids.
func (r *Registry) Lookup(id string) (Module, error) {
	m, ok := r.Get(id)
	if !ok {
		return nil, NewError(CodeInvalidGame, "unknown game %q", id)
	}
	return m, nil
}

// List returns the info of every registered game, sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
