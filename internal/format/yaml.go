//go:build !noyaml

package format

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// YAML is available unless built with the noyaml tag.
const YAML Tag = "yaml"

func init() {
	register(codec{
		tag:        YAML,
		priority:   20,
		extensions: []string{"yaml", "yml"},
		encode:     encodeYAML,
		decode:     decodeYAML,
	})
}

func encodeYAML(v any, _ bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeYAML(data []byte, out any) (Reason, error) {
	return ReasonUnknown, yaml.Unmarshal(data, out)
}
