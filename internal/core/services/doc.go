// Package services implements the core sync logic: the page sync
// worker state machine, the failure classifier wrapping it, and the
// scheduler that fans out per-organisation sync jobs.
package services
