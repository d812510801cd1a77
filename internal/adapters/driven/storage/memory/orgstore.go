// Package memory provides in-memory store adapters, used in tests and
// as the default runtime store when no data directory is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

// Ensure OrganisationStore implements the interface.
var _ driven.OrganisationStore = (*OrganisationStore)(nil)

// OrganisationStore is an in-memory implementation of
// driven.OrganisationStore.
type OrganisationStore struct {
	mu   sync.RWMutex
	orgs map[string]domain.Organisation
}

// NewOrganisationStore creates a new in-memory organisation store.
func NewOrganisationStore() *OrganisationStore {
	return &OrganisationStore{
		orgs: make(map[string]domain.Organisation),
	}
}

// Save stores or updates an organisation.
func (s *OrganisationStore) Save(_ context.Context, org domain.Organisation) error {
	if org.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = org
	return nil
}

// Get retrieves an organisation by ID.
func (s *OrganisationStore) Get(_ context.Context, id string) (*domain.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &org, nil
}

// List returns all organisations.
func (s *OrganisationStore) List(_ context.Context) ([]domain.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orgs := make([]domain.Organisation, 0, len(s.orgs))
	for _, org := range s.orgs {
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// Remove deletes an organisation.
func (s *OrganisationStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.orgs, id)
	return nil
}

// SetLastSync records the start instant of the last completed sync.
func (s *OrganisationStore) SetLastSync(_ context.Context, id string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return domain.ErrNotFound
	}
	org.LastSyncAt = startedAt
	s.orgs[id] = org
	return nil
}
