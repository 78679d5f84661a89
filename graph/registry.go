package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh node instance. Each graph node gets its own
// instance, so per-instance state (selector counters) stays isolated.
type Factory func() Node

// Registry maps node type names to factories. Aliases let legacy names from
// earlier releases resolve to the same factory; they exist only at this
// boundary and the instances they produce are indistinguishable.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Register adds a node type under its canonical name.
func (r *Registry) Register(typeName string, factory Factory) error {
	if typeName == "" {
		return fmt.Errorf("node type name required")
	}
	if factory == nil {
		return fmt.Errorf("node factory required for %q", typeName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeName]; exists {
		return fmt.Errorf("node type %q already registered", typeName)
	}
	if _, exists := r.aliases[typeName]; exists {
		return fmt.Errorf("node type %q already registered as an alias", typeName)
	}
	r.factories[typeName] = factory
	return nil
}

// Alias registers an alternate name for an existing node type.
func (r *Registry) Alias(alias, typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeName]; !exists {
		return fmt.Errorf("cannot alias unknown node type %q", typeName)
	}
	if _, exists := r.factories[alias]; exists {
		return fmt.Errorf("alias %q collides with a registered node type", alias)
	}
	if _, exists := r.aliases[alias]; exists {
		return fmt.Errorf("alias %q already registered", alias)
	}
	r.aliases[alias] = typeName
	return nil
}

// New instantiates a node by canonical name or alias.
func (r *Registry) New(name string) (Node, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	if !ok {
		if canonical, aliased := r.aliases[name]; aliased {
			factory, ok = r.factories[canonical]
		}
	}
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", name)
	}
	return factory(), nil
}

// Resolve returns the canonical type name for a name or alias.
func (r *Registry) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.factories[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

// Types returns the sorted canonical type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
