package plugin

import (
	"fmt"
	"sync"
)

// Registry manages named plugin factories and instances. Registration order
// is preserved: it is the tie-break order the fallback orchestrator uses
// after explicit preferences.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Plugin
	order     []string
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Plugin),
	}
}

// RegisterFactory registers a named factory for creating plugins.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a plugin using the named factory and config, and
// registers the instance.
func (r *Registry) Create(name string, cfg map[string]any) (Plugin, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plugin factory %q not registered", name)
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create plugin %q: %w", name, err)
	}
	if err := r.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Register adds a plugin instance. The name must be unique.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	r.instances[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns a registered plugin instance by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.instances[name]
	return p, ok
}

// Names returns all registered plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Descriptors returns the descriptors of all registered plugins in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		ds = append(ds, r.instances[name].Descriptor())
	}
	return ds
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
