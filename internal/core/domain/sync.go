package domain

import "time"

// SyncJob is the continuation state threading one page of a logical
// sync to the next. It is carried entirely in the dispatched event
// payload; nothing about an in-flight sync is persisted.
type SyncJob struct {
	// OrganisationID identifies the organisation being synced.
	OrganisationID string

	// Region is the organisation's hub region, copied into the job so
	// workers need not re-read it.
	Region string

	// IsFirstSync marks the initial sync after a connection is
	// established. First syncs may be dispatched ahead of routine ones.
	IsFirstSync bool

	// SyncStartedAt is the watermark for the whole logical sync. It is
	// fixed when the first page is emitted and never changes across
	// pages; the finalise pass deletes hub records older than it.
	SyncStartedAt time.Time

	// Cursor is the opaque page cursor for this unit of work.
	// Empty means the first page.
	Cursor string
}

// WithCursor returns a copy of the job positioned at the next page.
// Everything else, the watermark included, is carried over verbatim.
func (j SyncJob) WithCursor(cursor string) SyncJob {
	j.Cursor = cursor
	return j
}

// FirstPage reports whether the job targets the first page.
func (j SyncJob) FirstPage() bool {
	return j.Cursor == ""
}

// PageStatus is the outcome of one page-sync unit of work.
type PageStatus string

const (
	// PageOngoing means a continuation job for the next page was emitted.
	PageOngoing PageStatus = "ongoing"

	// PageCompleted means this was the last page and the finalise
	// (stale-record deletion) pass ran.
	PageCompleted PageStatus = "completed"
)

// UserRecord is one normalised user as pushed to the hub.
type UserRecord struct {
	// ID is the provider-scoped unique identifier.
	ID string

	// DisplayName is the user's display name.
	DisplayName string

	// Email is the primary identifier used for matching in the hub.
	Email string

	// AdditionalEmails holds secondary identifiers, when the provider
	// exposes them.
	AdditionalEmails []string
}

// UserPage is one page of normalised users returned by a connector.
type UserPage struct {
	// Users are the normalised records for this page. May be empty.
	Users []UserRecord

	// NextCursor positions the next page. Empty means the page stream
	// is exhausted and the sync should finalise.
	NextCursor string
}

// HasMore reports whether another page follows this one.
func (p *UserPage) HasMore() bool {
	return p.NextCursor != ""
}
