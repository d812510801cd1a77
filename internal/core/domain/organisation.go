package domain

import "time"

// Organisation represents one tenant whose users are synchronised into
// the hub. An organisation is created when a customer connects a SaaS
// account and removed when its credential is confirmed invalid.
type Organisation struct {
	// ID is the globally unique identifier for the organisation.
	ID string

	// Region is the hub region the organisation's data lives in.
	Region string

	// ConnectorType identifies the connector used for this organisation
	// (e.g. "github", "dropbox").
	ConnectorType string

	// Credential is the opaque API credential for the remote provider.
	// An empty credential means the organisation cannot be synced.
	Credential string

	// Config contains connector-specific settings, such as the GitHub
	// organisation slug to enumerate members from.
	Config map[string]string

	// LastSyncAt is the start instant of the last completed sync.
	// Zero if the organisation has never completed a sync.
	LastSyncAt time.Time

	// CreatedAt is when the organisation was created.
	CreatedAt time.Time
}

// EligibilityPolicy decides whether an organisation is due for a
// scheduled sync at the given instant. The policy is injected into the
// scheduler rather than hard-coded.
type EligibilityPolicy func(org Organisation, now time.Time) bool

// SyncAll is the default policy: every organisation with a credential is
// eligible on every scheduler tick.
func SyncAll(org Organisation, _ time.Time) bool {
	return org.Credential != ""
}

// NotSyncedWithin returns a policy selecting organisations whose last
// completed sync started more than d ago.
func NotSyncedWithin(d time.Duration) EligibilityPolicy {
	return func(org Organisation, now time.Time) bool {
		if org.Credential == "" {
			return false
		}
		return org.LastSyncAt.IsZero() || now.Sub(org.LastSyncAt) > d
	}
}
