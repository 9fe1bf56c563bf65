package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSON is always available.
const JSON Tag = "json"

func init() {
	register(codec{
		tag:        JSON,
		priority:   0,
		extensions: []string{"json"},
		encode:     encodeJSON,
		decode:     decodeJSON,
	})
}

func encodeJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder terminates every value with a newline; callers own line endings.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decodeJSON(data []byte, out any) (Reason, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		return classifyJSON(err), err
	}

	offset := dec.InputOffset()
	if rest := bytes.TrimSpace(data[offset:]); len(rest) > 0 {
		return ReasonSyntax, fmt.Errorf("trailing characters after JSON value at offset %d", offset)
	}
	return ReasonUnknown, nil
}

func classifyJSON(err error) Reason {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var invalidErr *json.InvalidUnmarshalError

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ReasonEOF
	case errors.As(err, &syntaxErr):
		return ReasonSyntax
	case errors.As(err, &typeErr), errors.As(err, &invalidErr):
		return ReasonData
	default:
		// Anything else surfaced by the decoder comes from the underlying reader.
		return ReasonIO
	}
}
