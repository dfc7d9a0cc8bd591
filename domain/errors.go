package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrContentNotFound signals a note page that no longer exists. It is a
// stage failure for that item only, never fatal to the run.
var ErrContentNotFound = errors.New("note content not found")

// StatusError is a non-2xx response from a collaborator, carrying enough of
// the reply to classify and report the failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsTransient classifies failures for retry purposes. Server-side errors and
// network trouble are worth retrying; client-side rejections and cancelled
// contexts are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrContentNotFound) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == 429
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Unknown failure kinds default to retry.
	return true
}
