package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Toggle is a boolean that also accepts yes/no and on/off spellings.
// Any other value is rejected instead of defaulting to false.
type Toggle bool

// ParseToggle parses a toggle value.
func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized toggle value %q (use yes/no or true/false)", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Toggle) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: toggle must be a scalar", node.Line)
	}
	v, err := ParseToggle(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = v
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (t *Toggle) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case bool:
		*t = Toggle(v)
		return nil
	case string:
		parsed, err := ParseToggle(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("toggle must be a boolean or string, got %T", data)
	}
}
