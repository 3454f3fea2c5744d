package config

// ToolName is used in diagnostics and generated-document comments.
const ToolName = "jsonschema-gen"

// DefaultConfigFile is the options file looked up in the working directory
// when no -config flag is given.
const DefaultConfigFile = "jsonschema.yaml"

// Schema draft dialect URIs.
const (
	Draft2020URI = "https://json-schema.org/draft/2020-12/schema"
	Draft07URI   = "http://json-schema.org/draft-07/schema#"
)

// JSON type names emitted into schema nodes.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// DefsPrefix is the JSON pointer prefix for references into $defs.
const DefsPrefix = "#/$defs/"
