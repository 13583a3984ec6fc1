package catalog

import (
	"fmt"
	"sync"

	"github.com/ajitpratap0/astropipe/pkg/config"
	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/logger"
	"go.uber.org/zap"
)

// Registry manages catalog source registration and instantiation
type Registry struct {
	sources map[string]SourceFactory
	mu      sync.RWMutex
	logger  *zap.Logger
}

// SourceFactory is a function that creates catalog source instances.
// It takes a BaseConfig and returns a configured Fetcher or an error.
type SourceFactory func(config *config.BaseConfig) (Fetcher, error)

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		logger:  logger.Get().With(zap.String("component", "catalog_registry")),
	}
}

// RegisterSource registers a catalog source factory
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("catalog source %s already registered", name))
	}

	r.sources[name] = factory
	r.logger.Info("catalog source registered", zap.String("name", name))
	return nil
}

// CreateSource creates a catalog source instance
func (r *Registry) CreateSource(name string, config *config.BaseConfig) (Fetcher, error) {
	r.mu.RLock()
	factory, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("catalog source %s not found", name))
	}

	source, err := factory(config)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create catalog source %s", name))
	}

	return source, nil
}

// ListSources returns a list of registered catalog sources
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.sources))
	for name := range r.sources {
		sources = append(sources, name)
	}
	return sources
}

// HasSource checks if a catalog source is registered
func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sources[name]
	return exists
}

// Clear removes all registered sources (mainly for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources = make(map[string]SourceFactory)
}

// Global registry functions

// RegisterSource registers a catalog source in the global registry
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// CreateSource creates a catalog source from the global registry
func CreateSource(name string, config *config.BaseConfig) (Fetcher, error) {
	return globalRegistry.CreateSource(name, config)
}

// ListSources returns registered sources from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// HasSource checks if a source is registered in the global registry
func HasSource(name string) bool {
	return globalRegistry.HasSource(name)
}

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}
