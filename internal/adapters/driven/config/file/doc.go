// Package file provides a TOML-backed configuration store under the
// windlass config directory, with optional change watching for
// long-running processes.
package file
