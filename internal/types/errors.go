package types

import (
	"errors"
	"fmt"
)

// Errors returned by sync operations.
//
// Check them with errors.Is:
//
//	if errors.Is(err, types.ErrUnmappableValue) {
//	    // report and continue with the next task
//	}
var (
	// ErrAuthentication is returned when the remote rejects the credentials.
	// It aborts the whole pass.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteNotFound is returned when a remote record or origin does not exist.
	ErrRemoteNotFound = errors.New("remote record not found")

	// ErrRateLimited is returned when the remote throttles requests and the
	// retry budget has been exhausted.
	ErrRateLimited = errors.New("rate limited by remote")

	// ErrTransient marks network failures and server errors worth retrying.
	ErrTransient = errors.New("transient remote failure")

	// ErrInvalidFilterSyntax is returned when a filter expression cannot be parsed.
	ErrInvalidFilterSyntax = errors.New("invalid filter syntax")

	// ErrUnmappableValue is returned when a local categorical value has no
	// remote counterpart.
	ErrUnmappableValue = errors.New("unmappable value")

	// ErrLocalWriteFailure is returned when a task file cannot be written.
	ErrLocalWriteFailure = errors.New("local write failed")

	// ErrMalformedLocalRecord is returned when a task file cannot be parsed.
	ErrMalformedLocalRecord = errors.New("malformed local record")
)

// FilterSyntaxError describes where a filter expression failed to parse.
type FilterSyntaxError struct {
	Expr   string
	Term   string
	Reason string
}

func (e *FilterSyntaxError) Error() string {
	return fmt.Sprintf("invalid filter %q: term %q: %s", e.Expr, e.Term, e.Reason)
}

func (e *FilterSyntaxError) Unwrap() error { return ErrInvalidFilterSyntax }

// UnmappableError names the value that could not be mapped.
type UnmappableError struct {
	Field string
	Value string
	Known []string
}

func (e *UnmappableError) Error() string {
	return fmt.Sprintf("%s %q has no remote counterpart (known: %v)", e.Field, e.Value, e.Known)
}

func (e *UnmappableError) Unwrap() error { return ErrUnmappableValue }

// IsFatal reports whether err must abort a pass instead of being recorded
// against a single record.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrInvalidFilterSyntax) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable reports whether err may succeed if the call is repeated.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrRemoteNotFound) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

// IsPerRecord reports whether err belongs to a single record and should be
// collected into the pass result while processing continues.
func IsPerRecord(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRemoteNotFound) ||
		errors.Is(err, ErrUnmappableValue) ||
		errors.Is(err, ErrLocalWriteFailure) ||
		errors.Is(err, ErrMalformedLocalRecord)
}
