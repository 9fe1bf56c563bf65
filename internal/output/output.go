// Package output renders command results to a file or standard output.
package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/florianilch/qbtools/internal/format"
)

// Op names the step of Write that failed.
type Op string

const (
	OpEncode Op = "encode"
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpClose  Op = "close"
)

// Error reports a failed Write together with the requested format.
type Error struct {
	Tag  format.Tag
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string {
	dest := e.Path
	if dest == "" {
		dest = "stdout"
	}
	return fmt.Sprintf("writing %s output to %s: %s: %v", e.Tag, dest, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Serializer writes values followed by a single newline.
type Serializer struct {
	stdout io.Writer
}

// New returns a Serializer that uses stdout when no path is given.
func New(stdout io.Writer) *Serializer {
	return &Serializer{stdout: stdout}
}

// Write encodes value and writes it to path, or to stdout when path is empty. The file
// is created or truncated; on failure whatever was written stays in place.
func (s *Serializer) Write(value any, path string, tag format.Tag, pretty bool) (err error) {
	data, err := format.Serialize(value, tag, pretty)
	if err != nil {
		return s.fail(tag, OpEncode, path, err)
	}

	w := s.stdout
	if path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return s.fail(tag, OpCreate, path, createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = s.fail(tag, OpClose, path, closeErr)
			}
		}()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return s.fail(tag, OpWrite, path, err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return s.fail(tag, OpWrite, path, err)
	}

	return nil
}

func (s *Serializer) fail(tag format.Tag, op Op, path string, err error) error {
	slog.Error("output failed", "format", tag.String(), "op", string(op), "path", path, "error", err)
	return &Error{Tag: tag, Op: op, Path: path, Err: err}
}
