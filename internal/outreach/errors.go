package outreach

import (
	"context"
	"errors"
	"fmt"
)

// StructuralError means an expected element could not be found or used.
// Recoverable: the dispatcher moves on to the next fallback strategy.
// Lookup timeouts are folded into this category.
type StructuralError struct {
	Target string
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("%s not found", e.Target)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// SessionError means the browser or driver connection is gone. Not
// recoverable here; the caller must tear the session down and recreate
// it.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session lost: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// ErrVerificationUncertain is returned when the submit control was
// clicked but the compose dialog is still present afterwards. Reported
// as failure; the target system gives no acknowledgment channel, so the
// bias is toward false negatives.
var ErrVerificationUncertain = errors.New("submission not confirmed: compose dialog still present")

// recoverable reports whether err should trigger the next fallback
// strategy rather than abort the dispatch.
func recoverable(err error) bool {
	var se *StructuralError
	if errors.As(err, &se) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func isSessionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se)
}
