package github

import (
	"errors"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s", e.StatusCode, e.Message)
}

// wrapError converts go-github errors to our error types. A 401
// response maps to domain.ErrUnauthorized so the failure classifier
// can disconnect the organisation.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == 401 {
			return fmt.Errorf("%s: %w: %s", operation, domain.ErrUnauthorized, ghErr.Message)
		}
		return fmt.Errorf("%s: %w", operation, &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		})
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
