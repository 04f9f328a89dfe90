// Package apperr defines the error taxonomy shared by providers, stores and
// the track service. The HTTP layer maps these onto status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedURL means no provider recognizes the URL shape.
	ErrUnsupportedURL = errors.New("url not supported")

	// ErrTrackNotFound means a store lookup expected a cached track and found none.
	ErrTrackNotFound = errors.New("track not found")

	// ErrSourceMissing means a persisted track carries no downloadable source id.
	// That violates a persistence invariant, so it is fatal rather than retryable.
	ErrSourceMissing = errors.New("persisted track has no downloadable source")
)

// DownloadError reports a failed run of the external download executable.
type DownloadError struct {
	ExitCode int
	Err      error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download failed: %v", e.Err)
	}
	return fmt.Sprintf("download failed: exit code %d", e.ExitCode)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// UpstreamError reports a non-200 response from an upstream API such as the
// Spotify token or metadata endpoints.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}
