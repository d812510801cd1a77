// Package driven defines the outbound ports: the collaborator
// interfaces the core services depend on (remote page fetchers, the
// hub sink, the organisation store and the job dispatcher).
package driven
