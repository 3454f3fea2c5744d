package schema

import "encoding/json"

// Node is a single JSON Schema node. The same shape serves documents,
// property subschemas and $defs entries.
type Node struct {
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type     string           `json:"type,omitempty"`
	Format   string           `json:"format,omitempty"`
	Enum     []string         `json:"enum,omitempty"`
	Items    *Node            `json:"items,omitempty"`
	AnyOf    []*Node          `json:"anyOf,omitempty"`
	Required []string         `json:"required,omitempty"`

	Properties map[string]*Node `json:"properties,omitempty"`

	// AdditionalProperties is either a bool or a *Node, matching the two
	// forms the keyword takes in JSON Schema.
	AdditionalProperties interface{} `json:"additionalProperties,omitempty"`

	Defs map[string]*Node `json:"$defs,omitempty"`
}

// MarshalIndent renders the node as indented JSON.
func (n *Node) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}
