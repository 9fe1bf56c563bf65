package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/florianilch/qbtools/internal/format"
)

// Location is a resolved config file path and the format implied by its extension.
type Location struct {
	Path string
	Tag  format.Tag
	// Exists is false for the synthesized default path.
	Exists bool
}

// Locate returns the first existing regular file base.<ext> in format.Extensions order,
// or base.json when none exists.
func Locate(base string) Location {
	for _, ext := range format.Extensions() {
		path := base + "." + ext
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Location{Path: path, Tag: TagOf(path), Exists: true}
	}

	return Location{
		Path: base + "." + format.Default.String(),
		Tag:  format.Default,
	}
}

// TagOf returns the format implied by path's extension. It panics when the extension is
// missing or unknown: callers only pass paths produced by Locate.
func TagOf(path string) format.Tag {
	ext := filepath.Ext(path)
	if ext == "" {
		panic(fmt.Sprintf("configstore: %q has no extension", path))
	}
	tag, ok := format.FromExtension(ext)
	if !ok {
		panic(fmt.Sprintf("configstore: %q has unsupported extension %q", path, ext))
	}
	return tag
}

// Candidates describes every path Locate considers, e.g. "qb-api-cfg.{json,toml,yaml,yml}".
func Candidates(base string) string {
	return fmt.Sprintf("%s.{%s}", base, strings.Join(format.Extensions(), ","))
}
