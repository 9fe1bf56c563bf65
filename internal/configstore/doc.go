// Package configstore locates, loads and saves the credential file.
//
// The file lives at a base path without extension. Locate probes base.<ext> for every
// compiled-in format extension in the fixed priority order json, toml, yaml, yml and
// picks the first regular file. When none exists, base.json is used and will be created
// by the first Save.
//
// Save re-resolves the location exactly as Load does, so it overwrites the file that was
// read, in that file's format. Writes go through a temp file + rename with mode 0600.
package configstore
