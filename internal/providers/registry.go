package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kvittering/kvittering/internal/listing"
)

// Registry manages registered providers, indexed by name and by platform
type Registry struct {
	mu         sync.RWMutex
	providers  map[string]Provider
	byPlatform map[listing.Platform]Provider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[string]Provider),
		byPlatform: make(map[listing.Platform]Provider),
	}
}

// Register adds a provider to the registry. Each platform has at most one provider.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("cannot register nil provider")
	}

	name := provider.Name()
	if name == "" {
		return fmt.Errorf("provider must have a name")
	}

	platform := provider.Platform()
	if platform == "" || platform == listing.PlatformUnknown {
		return fmt.Errorf("provider %s must declare a platform", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if already registered
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s is already registered", name)
	}
	if existing, exists := r.byPlatform[platform]; exists {
		return fmt.Errorf("platform %s is already served by provider %s", platform, existing.Name())
	}

	r.providers[name] = provider
	r.byPlatform[platform] = provider
	return nil
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// ForPlatform returns the provider serving platform
func (r *Registry) ForPlatform(platform listing.Platform) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.byPlatform[platform]
	return provider, ok
}

// GetAll returns all registered providers sorted by name
func (r *Registry) GetAll() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Provider, 0, len(r.providers))
	for _, provider := range r.providers {
		result = append(result, provider)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// List returns the sorted names of all registered providers
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}
