package driving

import (
	"context"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// PageWorker executes one page-sync unit of work: fetch a page, push
// it downstream and either continue or finalise the sync.
type PageWorker interface {
	// ProcessPage runs the page identified by the job. On success the
	// report says whether the sync is ongoing (a continuation job was
	// dispatched) or completed (the finalise pass ran).
	ProcessPage(ctx context.Context, job domain.SyncJob) (*PageReport, error)
}

// PageReport describes the outcome of one successful page execution.
type PageReport struct {
	// OrganisationID identifies the organisation the page belonged to.
	OrganisationID string

	// Status is ongoing or completed.
	Status domain.PageStatus

	// UsersUpserted is the number of users pushed for this page.
	UsersUpserted int

	// NextCursor is the cursor of the dispatched continuation job,
	// empty when the sync completed.
	NextCursor string
}
