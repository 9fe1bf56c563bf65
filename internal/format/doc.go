// Package format maps format tags to serializer/deserializer pairs.
//
// JSON is always compiled in and is the default. TOML and YAML can be left out of a
// build with the notoml and noyaml build tags; their Tag constants are then not declared,
// so code that names a disabled format fails to compile instead of failing at runtime.
//
// The same lowercase name serves as file extension and CLI value:
//
//	tag, err := format.Parse("yaml")
//	data, err := format.Serialize(value, tag, false)
//
// Payloads never end with a newline; callers add their own terminator.
//
// Extensions returns the fixed lookup priority used when searching for config files:
// json, then toml, then yaml and yml.
package format
