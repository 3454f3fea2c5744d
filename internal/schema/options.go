package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opbokel/jsonschema-generator/internal/config"
)

// Options control the parts of document assembly that are a matter of taste
// rather than type structure. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Draft selects the schema dialect: "2020-12" or "7".
	Draft string `yaml:"draft"`

	// ID is stamped into the document's $id verbatim when set.
	ID string `yaml:"id"`

	// StampID generates a urn:uuid $id for documents without an explicit ID.
	StampID bool `yaml:"stampId"`

	// Title emits the declaration name as the title of object schemas.
	Title bool `yaml:"title"`

	// Descriptions emits declaration and field doc strings.
	Descriptions bool `yaml:"descriptions"`

	// NullableOptions renders an optional-wrapper type as
	// anyOf [wrapped, null] instead of just the wrapped schema.
	NullableOptions bool `yaml:"nullableOptions"`

	// DenyAdditionalProperties emits additionalProperties: false on every
	// object schema. When unset the keyword is omitted.
	DenyAdditionalProperties bool `yaml:"denyAdditionalProperties"`
}

// DefaultOptions returns the options used when no config file is present.
func DefaultOptions() Options {
	return Options{
		Draft:           "2020-12",
		Title:           true,
		Descriptions:    true,
		NullableOptions: true,
	}
}

// LoadOptions reads a YAML options file, filling unset fields from the
// defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options %s: %w", path, err)
	}
	if opts.Draft == "" {
		opts.Draft = "2020-12"
	}
	return opts, nil
}

func (o Options) draftURI() (string, error) {
	switch o.Draft {
	case "", "2020-12":
		return config.Draft2020URI, nil
	case "7":
		return config.Draft07URI, nil
	default:
		return "", fmt.Errorf("unknown schema draft %q", o.Draft)
	}
}
