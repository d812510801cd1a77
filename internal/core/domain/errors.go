package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the remote API rejected the credential.
	// Connectors map HTTP 401 responses to this error; the failure
	// classifier turns it into a terminal failure with side effects.
	ErrUnauthorized = errors.New("authorization rejected")

	// ErrCredentialMissing indicates the organisation has no stored
	// credential and cannot be synced.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrMalformedPage indicates the remote API returned a page payload
	// that could not be decoded into user records.
	ErrMalformedPage = errors.New("malformed page payload")

	// ErrUnsupportedConnector indicates an unknown connector type.
	ErrUnsupportedConnector = errors.New("unsupported connector type")
)

// TerminalError marks a failure that must not be retried. The dispatch
// layer checks IsTerminal before consuming its retry budget; everything
// else is treated as transient.
type TerminalError struct {
	// Op describes the operation that failed, e.g. "fetch credential".
	Op string

	// Err is the underlying cause, preserved for errors.Is/As.
	Err error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps err as a non-retriable failure.
func Terminal(op string, err error) error {
	return &TerminalError{Op: op, Err: err}
}

// IsTerminal reports whether err (or anything it wraps) is terminal.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}
