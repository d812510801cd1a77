// Package connectors wires connector-specific page fetchers into the
// core through a type registry. Each connector lives in its own
// subpackage and normalises the provider's records into
// domain.UserRecord.
package connectors
