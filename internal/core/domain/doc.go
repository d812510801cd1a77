// Package domain contains the core business entities for windlass:
// organisations, sync jobs, normalised user records and the error
// taxonomy shared by services and adapters.
package domain
