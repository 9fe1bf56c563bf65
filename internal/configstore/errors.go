package configstore

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no candidate file exists. It also matches fs.ErrNotExist.
var ErrNotFound = errors.New("config file not found")

// ReadError is an I/O failure other than a missing file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// MalformedError means the file exists but does not decode into a Config.
type MalformedError struct {
	Path string
	// Err is a *format.DecodeError.
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
