package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrWong99/coinhop/internal/speech"
)

// ErrBackendNotRegistered is returned by [Registry.CreateBackend] when no
// factory has been registered under the requested provider name.
var ErrBackendNotRegistered = errors.New("config: speech backend not registered")

// BackendFactory builds a speech backend from its configuration entry.
type BackendFactory func(BackendEntry) (speech.Transcriber, error)

// Registry maps provider names to speech backend constructors. It is safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]BackendFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]BackendFactory)}
}

// RegisterBackend registers a backend factory under provider.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterBackend(provider string, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[provider] = factory
}

// CreateBackend instantiates the backend registered under entry.Provider.
// Returns [ErrBackendNotRegistered] if no factory has been registered for
// that name.
func (r *Registry) CreateBackend(entry BackendEntry) (speech.Transcriber, error) {
	r.mu.RLock()
	factory, ok := r.backends[entry.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotRegistered, entry.Provider)
	}
	return factory(entry)
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for n := range r.backends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
