package providers

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDuplicateProvider is returned when two providers share a name
	ErrDuplicateProvider = errors.New("provider already registered")
)

// Registry holds the configured provider set and a per-provider cache of
// supported model descriptors. Providers are owned by the caller; the
// registry never creates or destroys them. Registration order is preserved
// because it doubles as the default fallback priority order.
type Registry struct {
	mu         sync.RWMutex
	order      []string
	providers  map[string]Provider
	modelCache map[string][]ModelDescriptor
	logger     *zap.Logger
}

// NewRegistry creates a registry over the given providers. Argument order
// defines registration order. Duplicate names are rejected.
func NewRegistry(logger *zap.Logger, provs ...Provider) (*Registry, error) {
	r := &Registry{
		providers:  make(map[string]Provider, len(provs)),
		modelCache: make(map[string][]ModelDescriptor),
		logger:     logger,
	}
	for _, p := range provs {
		if p == nil {
			return nil, errors.New("provider cannot be nil")
		}
		name := p.Name()
		if name == "" {
			return nil, errors.New("provider name cannot be empty")
		}
		if _, exists := r.providers[name]; exists {
			return nil, ErrDuplicateProvider
		}
		r.providers[name] = p
		r.order = append(r.order, name)
	}
	return r, nil
}

// Initialize runs each provider's initialization and model listing, caching
// the returned descriptors. A failing provider is logged and left without a
// model cache entry; it stays registered for connectivity probing. No error
// here is fatal. Provider calls run without the registry lock so concurrent
// lookups are never blocked on a slow backend; the lock is taken only to
// swap each provider's cached descriptors.
func (r *Registry) Initialize(ctx context.Context) {
	for _, name := range r.Names() {
		p, err := r.Get(name)
		if err != nil {
			continue
		}
		if err := p.Initialize(ctx); err != nil {
			r.logger.Warn("provider initialization failed",
				zap.String("provider", name),
				zap.Error(err))
			r.clearModelCache(name)
			continue
		}
		descriptors, err := p.ListModels(ctx)
		if err != nil {
			r.logger.Warn("provider model listing failed",
				zap.String("provider", name),
				zap.Error(err))
			r.clearModelCache(name)
			continue
		}
		r.setModelCache(name, descriptors)
		r.logger.Info("provider initialized",
			zap.String("provider", name),
			zap.Int("models", len(descriptors)))
	}
}

func (r *Registry) setModelCache(name string, descriptors []ModelDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modelCache[name] = descriptors
}

func (r *Registry) clearModelCache(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.modelCache, name)
}

// Refresh re-runs initialization to pick up newly available models.
// Safe to call at any time.
func (r *Registry) Refresh(ctx context.Context) {
	r.Initialize(ctx)
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// Names returns all provider names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Models returns the cached model descriptors for a provider. The second
// return value is false when the provider has no cache entry (it failed
// initialization or was never initialized).
func (r *Registry) Models(name string) ([]ModelDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors, ok := r.modelCache[name]
	if !ok {
		return nil, false
	}
	out := make([]ModelDescriptor, len(descriptors))
	copy(out, descriptors)
	return out, true
}

// MaxContextLength returns the largest context capacity among the
// provider's cached models, or 0 when nothing is cached.
func (r *Registry) MaxContextLength(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, d := range r.modelCache[name] {
		if d.ContextLength > max {
			max = d.ContextLength
		}
	}
	return max
}

// HasModelTag reports whether any cached model of the provider carries
// the given capability tag.
func (r *Registry) HasModelTag(name, tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.modelCache[name] {
		if d.HasTag(tag) {
			return true
		}
	}
	return false
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Snapshot describes one registered provider for observability surfaces
type Snapshot struct {
	Name         string            `json:"name"`
	Type         ProviderType      `json:"type"`
	Capabilities Capabilities      `json:"capabilities"`
	Models       []ModelDescriptor `json:"models,omitempty"`
	Initialized  bool              `json:"initialized"`
}

// Snapshots returns a point-in-time view of every registered provider,
// in registration order.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.order))
	for _, name := range r.order {
		p := r.providers[name]
		models, initialized := r.modelCache[name]
		out = append(out, Snapshot{
			Name:         name,
			Type:         p.Type(),
			Capabilities: p.Capabilities(),
			Models:       models,
			Initialized:  initialized,
		})
	}
	return out
}
