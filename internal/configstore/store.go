package configstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/florianilch/qbtools/internal/atomicfile"
)

// filePerm keeps the credential file readable by its owner only.
const filePerm = 0600

// Store loads and saves a Config at a fixed base path.
type Store struct {
	basePath string
}

// NewStore creates a Store for basePath (a path without extension). No I/O is performed.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("config base path cannot be empty")
	}
	return &Store{basePath: basePath}, nil
}

// BasePath returns the path without extension.
func (s *Store) BasePath() string {
	return s.basePath
}

// Location resolves the file Load and Save would use right now.
func (s *Store) Location() Location {
	return Locate(s.basePath)
}

// Candidates describes every path the store considers.
func (s *Store) Candidates() string {
	return Candidates(s.basePath)
}

// Load reads and decodes the located file.
// Returns an error matching ErrNotFound when no candidate exists, *MalformedError when
// the content does not decode and *ReadError for any other I/O failure.
func (s *Store) Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := s.Location()
	slog.DebugContext(ctx, "loading config", "path", loc.Path, "format", loc.Tag.String())

	data, err := os.ReadFile(loc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: tried %s: %w", ErrNotFound, s.Candidates(), err)
		}
		return nil, &ReadError{Path: loc.Path, Err: err}
	}

	if info, err := os.Stat(loc.Path); err == nil && info.Mode().Perm()&0077 != 0 {
		slog.WarnContext(ctx, "config file is accessible by other users",
			"path", loc.Path, "mode", fmt.Sprintf("%04o", info.Mode().Perm()))
	}

	cfg, err := Decode(data, loc.Tag)
	if err != nil {
		return nil, &MalformedError{Path: loc.Path, Err: err}
	}

	return cfg, nil
}

// Save encodes cfg in the located file's format and atomically replaces the file,
// creating base.json (and its directory) when no file exists yet.
func (s *Store) Save(ctx context.Context, cfg *Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	loc := s.Location()

	data, err := Encode(cfg, loc.Tag)
	if err != nil {
		return fmt.Errorf("encoding config as %s: %w", loc.Tag, err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}

	if !loc.Exists {
		if err := os.MkdirAll(filepath.Dir(loc.Path), 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := atomicfile.WriteFile(loc.Path, data, filePerm); err != nil {
		return fmt.Errorf("writing config %s: %w", loc.Path, err)
	}

	slog.DebugContext(ctx, "config saved", "path", loc.Path, "format", loc.Tag.String())
	return nil
}
