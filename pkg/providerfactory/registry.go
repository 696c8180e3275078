package providerfactory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"mercator-hq/ganymede/pkg/providers"
)

// Factory builds an unvalidated provider client from a configuration.
type Factory func(config providers.ClientConfig) (providers.Client, error)

// Registry maps provider type tags to client factories.
// It is a pure lookup table: registration has no side effects beyond storing
// the factory, and CreateClient has no side effects beyond construction.
//
// Registry is thread-safe and can be used concurrently.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register stores the factory for a provider type.
// Re-registering a type silently replaces the previous factory (last write wins).
func (r *Registry) Register(providerType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerType] = factory
}

// CreateClient builds a client for the named provider using the factory
// registered for config.Type. The returned client is fully constructed but
// not yet validated; callers must invoke Create on it before use.
//
// Returns UnknownProviderTypeError if no factory is registered for the type.
func (r *Registry) CreateClient(name string, config providers.ClientConfig) (providers.Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[config.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownProviderTypeError{
			Type:            config.Type,
			RegisteredTypes: r.Types(),
		}
	}

	config.Name = name
	client, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", name, err)
	}

	return client, nil
}

// Types returns the registered provider type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// UnknownProviderTypeError is returned when a configuration names a provider
// type with no registered factory.
type UnknownProviderTypeError struct {
	// Type is the unrecognized type tag.
	Type string

	// RegisteredTypes contains the type tags with registered factories.
	RegisteredTypes []string
}

// Error implements the error interface.
func (e *UnknownProviderTypeError) Error() string {
	return fmt.Sprintf("unknown provider type %q (registered types: %s)",
		e.Type, strings.Join(e.RegisteredTypes, ", "))
}

// Is implements error matching for errors.Is().
func (e *UnknownProviderTypeError) Is(target error) bool {
	return target == ErrUnknownProviderType
}
