package types

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned when a sync address cannot be parsed.
var ErrInvalidURL = errors.New("invalid sync address")

// DownloadFailedError reports a non-success response while fetching the
// catalog manifest or a song file.
type DownloadFailedError struct {
	Reason string
}

func (e *DownloadFailedError) Error() string {
	return fmt.Sprintf("download failed: %s", e.Reason)
}

// DecodingFailedError reports a malformed manifest body.
type DecodingFailedError struct {
	Cause error
}

func (e *DecodingFailedError) Error() string {
	return fmt.Sprintf("could not decode catalog manifest: %v", e.Cause)
}

func (e *DecodingFailedError) Unwrap() error { return e.Cause }

// RequestFailedError reports a transport-level failure (connection refused,
// timeout) before any HTTP status was received.
type RequestFailedError struct {
	Cause error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Cause)
}

func (e *RequestFailedError) Unwrap() error { return e.Cause }

// GeneralError carries a human-readable message for failures that fit no
// other category. Nothing in this taxonomy is fatal to the process.
type GeneralError struct {
	Message string
}

func (e *GeneralError) Error() string { return e.Message }
