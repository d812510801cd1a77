package driving

import (
	"context"
	"time"
)

// Scheduler periodically enumerates organisations due for sync and
// dispatches one first-page job per organisation.
type Scheduler interface {
	// Start begins the scheduler loop. Blocks until Stop is called or
	// the context is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler.
	Stop() error

	// RunOnce performs a single enumeration pass immediately.
	RunOnce(ctx context.Context) (*ScheduleReport, error)

	// ScheduleNow dispatches a sync for one organisation without
	// waiting for the next tick. firstSync marks the job as an initial
	// sync, which the dispatch layer may prioritise.
	ScheduleNow(ctx context.Context, organisationID string, firstSync bool) error
}

// ScheduleReport describes one enumeration pass.
type ScheduleReport struct {
	// StartedAt is the shared sync watermark for every job emitted in
	// this pass.
	StartedAt time.Time

	// OrganisationIDs lists the organisations a job was dispatched for.
	OrganisationIDs []string
}
