package app

import (
	"errors"
	"fmt"

	"github.com/florianilch/qbtools/internal/configstore"
	"github.com/florianilch/qbtools/internal/quickbooks"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitConfig    = 2
	ExitTransport = 3
)

var (
	// ErrMissingCredential means the config file carries no token fields at all.
	ErrMissingCredential = errors.New("config has no credential")
	// ErrMissingRefreshToken means the credential cannot be renewed.
	ErrMissingRefreshToken = errors.New("credential has no refresh token")
)

// RefreshError means the token endpoint did not issue a new credential.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// GuidedError attaches operator instructions to an error.
type GuidedError struct {
	Err      error
	Guidance string
}

func (e *GuidedError) Error() string {
	return e.Err.Error()
}

func (e *GuidedError) Unwrap() error {
	return e.Err
}

// Guidance returns the operator instructions carried anywhere in err's chain.
func Guidance(err error) string {
	var guided *GuidedError
	if errors.As(err, &guided) {
		return guided.Guidance
	}
	return ""
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var malformed *configstore.MalformedError
	var transport *quickbooks.TransportError
	switch {
	case errors.Is(err, configstore.ErrNotFound),
		errors.As(err, &malformed),
		errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrMissingRefreshToken):
		return ExitConfig
	case errors.As(err, &transport):
		return ExitTransport
	default:
		return ExitFailure
	}
}
