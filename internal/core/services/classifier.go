package services

import (
	"context"
	"errors"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
	"github.com/windlass-labs/windlass/internal/core/ports/driving"
	"github.com/windlass-labs/windlass/internal/logger"
)

// Ensure FailureClassifier implements the interface.
var _ driving.PageWorker = (*FailureClassifier)(nil)

// FailureClassifier wraps a PageWorker and reclassifies authorization
// rejections as terminal. It is the only place the "credential is
// confirmed invalid" side effects happen: flag the connection as
// broken in the hub, then remove the organisation so no further syncs
// are scheduled for it.
//
// Any other outcome, success or failure, passes through unmodified.
type FailureClassifier struct {
	next driving.PageWorker
	sink driven.Sink
	orgs driven.OrganisationStore
}

// NewFailureClassifier wraps next with authorization-failure handling.
func NewFailureClassifier(next driving.PageWorker, sink driven.Sink, orgs driven.OrganisationStore) *FailureClassifier {
	return &FailureClassifier{
		next: next,
		sink: sink,
		orgs: orgs,
	}
}

// ProcessPage delegates to the wrapped worker and inspects its error.
func (c *FailureClassifier) ProcessPage(ctx context.Context, job domain.SyncJob) (*driving.PageReport, error) {
	report, err := c.next.ProcessPage(ctx, job)
	if err == nil || !errors.Is(err, domain.ErrUnauthorized) {
		return report, err
	}

	logger.Warn("organisation %s: credential rejected, disconnecting", job.OrganisationID)

	// Side effects are best-effort: a failure to report the broken
	// connection must not mask the terminal error itself.
	if sinkErr := c.sink.UpdateConnectionStatus(ctx, job.OrganisationID, true); sinkErr != nil {
		logger.Warn("organisation %s: update connection status: %v", job.OrganisationID, sinkErr)
	}
	if removeErr := c.orgs.Remove(ctx, job.OrganisationID); removeErr != nil && !errors.Is(removeErr, domain.ErrNotFound) {
		logger.Warn("organisation %s: remove organisation: %v", job.OrganisationID, removeErr)
	}

	// Replace the error with a terminal one, keeping the original as
	// its cause so errors.Is(err, domain.ErrUnauthorized) still holds.
	return nil, domain.Terminal("authorization rejected", err)
}
