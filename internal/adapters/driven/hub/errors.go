package hub

import (
	"errors"
	"fmt"
)

// APIError represents a hub API error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hub: API error %d: %s", e.StatusCode, e.Message)
}

// IsRetriable reports whether the error is worth retrying: server
// errors and 429 are; client errors are not.
func IsRetriable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true // network-level failure
	}
	return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
}
