package secretstore

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by Write on backends that cannot persist a secret.
var ErrReadOnly = errors.New("secret storage is read-only")

// Store reads and writes the OAuth client secret.
type Store interface {
	// Read returns the stored secret. Returns error if it is missing or empty.
	Read(ctx context.Context) (string, error)

	// Write replaces the stored secret. Returns ErrReadOnly on read-only backends.
	Write(ctx context.Context, secret string) error
}
