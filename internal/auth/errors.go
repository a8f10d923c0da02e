package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionRevoked is returned when a token's session has been revoked.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrSessionUnknown is returned when no session record exists for a token.
	ErrSessionUnknown = errors.New("session not found")

	// ErrMissingUserID is returned when issuing a token for a user that was never persisted.
	ErrMissingUserID = errors.New("user has no id")
)

// KeyLoadError reports a signing key that could not be read, parsed, generated or written.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("signing key %s: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error {
	return e.Err
}

// IssuanceError reports a token that could not be issued. No token is
// returned alongside it.
type IssuanceError struct {
	Err error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("token issuance failed: %v", e.Err)
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}
