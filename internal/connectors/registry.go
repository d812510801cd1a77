package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/windlass-labs/windlass/internal/connectors/dropbox"
	"github.com/windlass-labs/windlass/internal/connectors/github"
	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

// Builder constructs a PageFetcher for an organisation.
type Builder func(org domain.Organisation) (driven.PageFetcher, error)

// Ensure Registry implements the factory port.
var _ driven.FetcherFactory = (*Registry)(nil)

// Registry maps connector types to fetcher builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder for a connector type, replacing any existing
// registration.
func (r *Registry) Register(connectorType string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[connectorType] = builder
}

// Create builds a fetcher for the organisation's connector type.
func (r *Registry) Create(_ context.Context, org domain.Organisation) (driven.PageFetcher, error) {
	r.mu.RLock()
	builder, ok := r.builders[org.ConnectorType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedConnector, org.ConnectorType)
	}
	return builder(org)
}

// SupportedTypes lists the registered connector types, sorted.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultRegistry returns a registry with all built-in connectors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("github", func(org domain.Organisation) (driven.PageFetcher, error) {
		return github.NewFetcher(org.Config["org"])
	})
	r.Register("dropbox", func(_ domain.Organisation) (driven.PageFetcher, error) {
		return dropbox.NewFetcher(), nil
	})
	return r
}
