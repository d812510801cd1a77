package driven

import (
	"context"
	"time"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// Sink is the downstream hub the sync pushes normalised users into.
type Sink interface {
	// UpsertUsers pushes one batch of users for the organisation.
	// Callers skip the call for empty batches.
	UpsertUsers(ctx context.Context, organisationID string, users []domain.UserRecord) error

	// DeleteUsersSyncedBefore tombstones every hub record for the
	// organisation that was not refreshed since the watermark. Run once
	// per logical sync, after the last page.
	DeleteUsersSyncedBefore(ctx context.Context, organisationID string, syncedBefore time.Time) error

	// UpdateConnectionStatus flags the organisation's connection as
	// broken (or healthy again) in the hub.
	UpdateConnectionStatus(ctx context.Context, organisationID string, hasError bool) error
}
