package driven

import (
	"context"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// PageFetcher retrieves one page of users from a remote provider.
// Each connector type (github, dropbox, ...) implements this interface
// and performs its own normalisation into domain.UserRecord.
type PageFetcher interface {
	// FetchPage fetches the page identified by cursor using the given
	// credential. An empty cursor means the first page. Fetching the
	// same cursor twice must yield the same batch, so a retried page is
	// safe to replay.
	//
	// Errors: domain.ErrUnauthorized (wrapped) when the credential is
	// rejected, domain.ErrMalformedPage (wrapped) when the payload
	// cannot be decoded, anything else is treated as transient.
	FetchPage(ctx context.Context, credential, cursor string) (*domain.UserPage, error)
}

// FetcherFactory creates a PageFetcher for an organisation based on its
// connector type and configuration.
type FetcherFactory interface {
	// Create builds a fetcher for the organisation. Returns an error
	// wrapping domain.ErrUnsupportedConnector for unknown types.
	Create(ctx context.Context, org domain.Organisation) (PageFetcher, error)

	// SupportedTypes lists the registered connector types.
	SupportedTypes() []string
}
