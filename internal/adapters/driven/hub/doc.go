// Package hub implements the Sink port against the central hub's REST
// API: user batch upserts, stale-record deletion and connection status
// updates.
package hub
