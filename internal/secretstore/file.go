package secretstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/florianilch/qbtools/internal/atomicfile"
)

// FileStore keeps the secret in a file readable only by its owner.
type FileStore struct {
	filePath string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore for the given path. No I/O happens until Read or Write.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	return &FileStore{
		filePath: filePath,
	}, nil
}

// Path returns the secret file location.
func (f *FileStore) Path() string {
	return f.filePath
}

// Read returns the stored secret after trimming whitespace. Returns error if the file
// doesn't exist, is empty, or is accessible by group or others.
func (f *FileStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(f.filePath)
	if err != nil {
		return "", err
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", f.filePath, perm)
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return "", err
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("empty secret file %s", f.filePath)
	}
	return secret, nil
}

// Write atomically replaces the secret file with mode 0600, creating parent
// directories with 0700 as needed.
func (f *FileStore) Write(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("secret cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(f.filePath), 0o700); err != nil {
		return err
	}

	return atomicfile.WriteFile(f.filePath, []byte(secret+"\n"), 0o600)
}
