package llm

import (
	"fmt"
	"sort"
	"strings"
)

// defines a function that creates a new provider instance
type ProviderFactory func() (Provider, error)

// Registry maps provider names to factories. main builds one and registers
// the providers it links in.
type Registry struct {
	providers map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// registers a provider factory with the given name
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// creates a new provider instance based on the given name
func (r *Registry) NewProvider(name string) (Provider, error) {
	factory, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return factory()
}

// Names lists the registered providers in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
