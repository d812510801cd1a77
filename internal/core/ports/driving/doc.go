// Package driving defines the inbound ports: the service interfaces
// exposed to the dispatch layer and the CLI.
package driving
