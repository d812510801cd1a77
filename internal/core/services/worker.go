package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
	"github.com/windlass-labs/windlass/internal/core/ports/driving"
	"github.com/windlass-labs/windlass/internal/logger"
)

// Ensure PageSyncWorker implements the interface.
var _ driving.PageWorker = (*PageSyncWorker)(nil)

// PageSyncWorker processes one page of a logical sync per invocation.
// Continuation happens by dispatching a new job carrying the next
// cursor, never by looping inside a single call: each page is an
// independently retriable unit of work.
//
// The worker is stateless; mutual exclusion per organisation is the
// dispatch layer's responsibility.
type PageSyncWorker struct {
	orgs       driven.OrganisationStore
	fetchers   driven.FetcherFactory
	sink       driven.Sink
	dispatcher driven.Dispatcher
}

// NewPageSyncWorker creates a page sync worker.
func NewPageSyncWorker(
	orgs driven.OrganisationStore,
	fetchers driven.FetcherFactory,
	sink driven.Sink,
	dispatcher driven.Dispatcher,
) *PageSyncWorker {
	return &PageSyncWorker{
		orgs:       orgs,
		fetchers:   fetchers,
		sink:       sink,
		dispatcher: dispatcher,
	}
}

// ProcessPage runs one page: fetch credential, fetch page, upsert the
// batch, then either dispatch a continuation or finalise the sync with
// the stale-record deletion pass.
func (w *PageSyncWorker) ProcessPage(ctx context.Context, job domain.SyncJob) (*driving.PageReport, error) {
	// 1. Fetch credential.
	org, err := w.orgs.Get(ctx, job.OrganisationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The organisation was deleted while the sync was in
			// flight. Retrying cannot succeed.
			return nil, domain.Terminal("fetch credential", fmt.Errorf("organisation %s: %w", job.OrganisationID, err))
		}
		return nil, fmt.Errorf("fetch credential: %w", err)
	}
	if org.Credential == "" {
		return nil, domain.Terminal("fetch credential", fmt.Errorf("organisation %s: %w", org.ID, domain.ErrCredentialMissing))
	}

	fetcher, err := w.fetchers.Create(ctx, *org)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedConnector) {
			return nil, domain.Terminal("create fetcher", err)
		}
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	// 2. Fetch one page.
	page, err := fetcher.FetchPage(ctx, org.Credential, job.Cursor)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedPage) {
			return nil, domain.Terminal("fetch page", err)
		}
		// Unauthorized and transient errors propagate as-is; the
		// failure classifier and the dispatch layer decide what
		// happens next.
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	report := &driving.PageReport{
		OrganisationID: org.ID,
		UsersUpserted:  len(page.Users),
	}

	// 3. Push the batch. An empty page skips the call entirely.
	if len(page.Users) > 0 {
		if err := w.sink.UpsertUsers(ctx, org.ID, page.Users); err != nil {
			return nil, fmt.Errorf("upsert users: %w", err)
		}
	}

	// 4. More pages: dispatch the continuation and report ongoing.
	if page.HasMore() {
		if err := w.dispatcher.Dispatch(ctx, job.WithCursor(page.NextCursor)); err != nil {
			return nil, fmt.Errorf("dispatch continuation: %w", err)
		}
		logger.Debug("organisation %s: page done, %d users, continuing at %q", org.ID, len(page.Users), page.NextCursor)
		report.Status = domain.PageOngoing
		report.NextCursor = page.NextCursor
		return report, nil
	}

	// 5. Last page: tombstone everything not refreshed by this sync.
	if err := w.sink.DeleteUsersSyncedBefore(ctx, org.ID, job.SyncStartedAt); err != nil {
		return nil, fmt.Errorf("delete stale users: %w", err)
	}
	if err := w.orgs.SetLastSync(ctx, org.ID, job.SyncStartedAt); err != nil {
		return nil, fmt.Errorf("record last sync: %w", err)
	}

	logger.Info("organisation %s: sync completed, %d users on final page", org.ID, len(page.Users))
	report.Status = domain.PageCompleted
	return report, nil
}
