package lexicon

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RGB is a 24-bit display color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color in "#rrggbb" form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalYAML decodes a color written as a three-element sequence, e.g.
// "[255, 182, 193]".
func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	var parts []int
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("lexicon: color at line %d: %w", value.Line, err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("lexicon: color at line %d: want 3 components, got %d", value.Line, len(parts))
	}
	for i, p := range parts {
		if p < 0 || p > 255 {
			return fmt.Errorf("lexicon: color at line %d: component %d out of range [0, 255]: %d", value.Line, i, p)
		}
	}
	*c = RGB{R: uint8(parts[0]), G: uint8(parts[1]), B: uint8(parts[2])}
	return nil
}

// MarshalYAML encodes the color as a flow sequence.
func (c RGB) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []uint8{c.R, c.G, c.B} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return n, nil
}
