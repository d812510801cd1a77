package driven

import (
	"context"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// Dispatcher accepts sync jobs for asynchronous execution. It is the
// only way work starts or continues: the scheduler dispatches one job
// per eligible organisation and the worker dispatches a continuation
// job per remaining page.
//
// The dispatch layer owns retry and mutual exclusion: transient
// failures are retried with the identical payload up to a budget, and
// at most one job per organisation runs at any instant.
type Dispatcher interface {
	// Dispatch enqueues a job. It does not wait for execution.
	Dispatch(ctx context.Context, job domain.SyncJob) error
}
