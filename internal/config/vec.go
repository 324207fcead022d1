package config

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Vec3 is an r3.Vec that reads from a YAML [x, y, z] sequence or from
// "x y z" / "x,y,z" text.
type Vec3 r3.Vec

func (v Vec3) Vec() r3.Vec { return r3.Vec(v) }

func (v Vec3) String() string {
	return fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z)
}

func (v Vec3) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Vec3) UnmarshalText(text []byte) error {
	fields := strings.FieldsFunc(string(text), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return fmt.Errorf("config: vector %q needs 3 components", text)
	}
	var xs [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("config: vector %q: %w", text, err)
		}
		xs[i] = x
	}
	*v = Vec3{X: xs[0], Y: xs[1], Z: xs[2]}
	return nil
}

func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("config: line %d: vector needs 3 components, got %d", node.Line, len(xs))
		}
		*v = Vec3{X: xs[0], Y: xs[1], Z: xs[2]}
		return nil
	case yaml.ScalarNode:
		return v.UnmarshalText([]byte(node.Value))
	default:
		return fmt.Errorf("config: line %d: expected vector", node.Line)
	}
}

func (v Vec3) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, x := range []float64{v.X, v.Y, v.Z} {
		n.Content = append(n.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(x, 'g', -1, 64),
		})
	}
	return n, nil
}
