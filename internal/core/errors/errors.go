// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import (
	"errors"
	"fmt"
)

// URL and identifier validation errors.
var (
	// ErrInvalidURL indicates the supplied video URL failed validation.
	ErrInvalidURL = errors.New("invalid video url")

	// ErrInvalidVideoID indicates a video ID with the wrong shape.
	ErrInvalidVideoID = errors.New("invalid video id")
)

// Video metadata errors.
var (
	// ErrVideoNotFound indicates the video does not exist upstream.
	ErrVideoNotFound = errors.New("video not found")

	// ErrQuotaExceeded indicates the provider rejected the call for quota reasons.
	ErrQuotaExceeded = errors.New("provider quota exceeded")
)

// Comment retrieval errors.
var (
	// ErrCommentsDisabled indicates the video has comments turned off.
	ErrCommentsDisabled = errors.New("comments disabled for video")

	// ErrAccessDenied indicates an authorization failure against the provider.
	ErrAccessDenied = errors.New("access to comments denied")

	// ErrNoComments indicates the video has zero analyzable comments.
	ErrNoComments = errors.New("video has no comments to analyze")
)

// Classification errors.
var (
	// ErrClassificationUnavailable indicates every comment in a run failed
	// classification.
	ErrClassificationUnavailable = errors.New("sentiment classification unavailable")

	// ErrNoProvidersAvailable indicates no classifier provider is configured.
	ErrNoProvidersAvailable = errors.New("no classifier providers available")

	// ErrResultCountMismatch indicates a classifier returned a different number
	// of results than inputs.
	ErrResultCountMismatch = errors.New("classifier result count mismatch")
)

// Storage errors.
var (
	// ErrNotFound is a generic not found error for storage lookups.
	ErrNotFound = errors.New("not found")
)

// UpstreamError is a provider failure that does not fit a more specific
// class. The provider's HTTP status code is retained so callers can report
// an actionable message.
type UpstreamError struct {
	Status int
	Op     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s: status %d", e.Op, e.Status)
}

// Upstream constructs an UpstreamError for the given operation and status.
func Upstream(op string, status int) *UpstreamError {
	return &UpstreamError{Status: status, Op: op}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError, returning it.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}

	return nil, false
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
