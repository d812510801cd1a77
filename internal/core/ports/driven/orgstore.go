package driven

import (
	"context"
	"time"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// OrganisationStore persists organisation records and their credentials.
type OrganisationStore interface {
	// Save stores or updates an organisation.
	Save(ctx context.Context, org domain.Organisation) error

	// Get retrieves an organisation by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Organisation, error)

	// List returns all organisations.
	List(ctx context.Context) ([]domain.Organisation, error)

	// Remove deletes an organisation. Called by the failure classifier
	// once a credential is confirmed invalid.
	// Returns domain.ErrNotFound if it does not exist.
	Remove(ctx context.Context, id string) error

	// SetLastSync records the start instant of the organisation's last
	// completed sync.
	SetLastSync(ctx context.Context, id string, startedAt time.Time) error
}
