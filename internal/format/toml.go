//go:build !notoml

package format

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
)

// TOML is available unless built with the notoml tag.
const TOML Tag = "toml"

func init() {
	register(codec{
		tag:        TOML,
		priority:   10,
		extensions: []string{"toml"},
		encode:     encodeTOML,
		decode:     decodeTOML,
	})
}

// encodeTOML has no pretty mode. The root value must encode to a table.
func encodeTOML(v any, _ bool) ([]byte, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(data, "\n"), nil
}

func decodeTOML(data []byte, out any) (Reason, error) {
	return ReasonUnknown, toml.Unmarshal(data, out)
}
