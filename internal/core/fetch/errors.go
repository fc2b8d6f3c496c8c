package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUTF8   = errors.New("content is not valid UTF-8")
	ErrEmptySource   = errors.New("source must not be empty")
	ErrNoOCIClient   = errors.New("no OCI client configured")
	ErrUnexpectedTTL = errors.New("cache max age must be positive")
	ErrTooLarge      = errors.New("remote document is too large")
)

// LocalReadError reports a local file that could not be read.
type LocalReadError struct {
	Path string
	Err  error
}

func (e *LocalReadError) Error() string {
	return fmt.Sprintf("failed to read local file %s: %v", e.Path, e.Err)
}

func (e *LocalReadError) Unwrap() error { return e.Err }

// RemoteError reports a failed transfer from a URL or registry.
type RemoteError struct {
	Location   string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to retrieve %s: unexpected status %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("failed to retrieve %s: %v", e.Location, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
