// Package apperr defines the error taxonomy shared across the sync engine.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing local note or remote resource.
	ErrNotFound = errors.New("not found")

	// ErrAuthentication signals a missing, expired, or rejected token.
	// The caller must clear the stored token and prompt for re-login.
	ErrAuthentication = errors.New("authentication required")

	// ErrRateLimited signals that the server kept returning 429 after the
	// retry budget was exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrSyncInProgress signals that a sync pass is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// APIError is a non-auth HTTP failure from the recording service. Status
// and Body are retained for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body)
}

// IsAuth reports whether err is (or wraps) an authentication failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
