package format

import (
	"fmt"
	"slices"
	"strings"
)

// Tag identifies a text serialization format.
type Tag string

// String returns the canonical lowercase name, which is also the file extension.
func (t Tag) String() string {
	return string(t)
}

// Default is the format used when nothing else is requested or found on disk.
const Default = JSON

type codec struct {
	tag Tag
	// priority orders lookups on disk; lower wins
	priority   int
	extensions []string
	encode     func(v any, pretty bool) ([]byte, error)
	decode     func(data []byte, out any) (Reason, error)
}

// codecs is filled by init functions of the compiled-in formats and never changes afterwards.
var codecs []codec

func register(c codec) {
	codecs = append(codecs, c)
	slices.SortStableFunc(codecs, func(a, b codec) int {
		return a.priority - b.priority
	})
}

func lookup(tag Tag) codec {
	for _, c := range codecs {
		if c.tag == tag {
			return c
		}
	}
	// Tags are only declared for compiled-in formats.
	panic(fmt.Sprintf("format: %q is not compiled in", string(tag)))
}

// Tags returns the compiled-in formats in lookup priority order.
func Tags() []Tag {
	tags := make([]Tag, 0, len(codecs))
	for _, c := range codecs {
		tags = append(tags, c.tag)
	}
	return tags
}

// Extensions returns every file extension (without dot) of the compiled-in formats in
// lookup priority order.
func Extensions() []string {
	var exts []string
	for _, c := range codecs {
		exts = append(exts, c.extensions...)
	}
	return exts
}

// FromExtension returns the format for a file extension, with or without leading dot.
func FromExtension(ext string) (Tag, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, c := range codecs {
		if slices.Contains(c.extensions, ext) {
			return c.tag, true
		}
	}
	return "", false
}

// Parse resolves a CLI value to a format. Only canonical names are accepted.
func Parse(name string) (Tag, error) {
	for _, c := range codecs {
		if string(c.tag) == name {
			return c.tag, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (supported: %s)", name, Names())
}

// Names returns the canonical names joined for help texts, e.g. "json|toml|yaml".
func Names() string {
	names := make([]string, 0, len(codecs))
	for _, c := range codecs {
		names = append(names, string(c.tag))
	}
	return strings.Join(names, "|")
}

// Serialize encodes v. pretty only affects JSON.
func Serialize(v any, tag Tag, pretty bool) ([]byte, error) {
	data, err := lookup(tag).encode(v, pretty)
	if err != nil {
		return nil, &EncodeError{Tag: tag, Err: err}
	}
	return data, nil
}

// Deserialize decodes data into out. Failures are returned as *DecodeError.
func Deserialize(data []byte, tag Tag, out any) error {
	reason, err := lookup(tag).decode(data, out)
	if err != nil {
		return &DecodeError{Tag: tag, Reason: reason, Err: err}
	}
	return nil
}
