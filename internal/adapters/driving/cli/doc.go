// Package cli implements the windlass command line interface using
// cobra. It wires the configuration store, organisation store, hub
// client, connector registry and scheduler together and exposes them
// through the org, sync, serve and version commands.
package cli
