package store

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a plugin's data file. It doubles as
// the file extension.
type Format string

const (
	// FormatJSON encodes the tree as indented JSON. This is the default.
	FormatJSON Format = "json"
	// FormatYAML encodes the tree as YAML.
	FormatYAML Format = "yaml"
)

// Valid reports whether a codec exists for this format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Ext returns the file extension for this format, without the dot.
func (f Format) Ext() string { return string(f) }

func (f Format) marshal(tree map[string]any) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(tree, "", "  ")
	case FormatYAML:
		return yaml.Marshal(tree)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func (f Format) unmarshal(raw []byte, tree *map[string]any) error {
	switch f {
	case FormatJSON:
		return json.Unmarshal(raw, tree)
	case FormatYAML:
		return yaml.Unmarshal(raw, tree)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
