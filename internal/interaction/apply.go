package interaction

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// minDirection is the direction length below which a directional gesture
// falls back to DefaultDirection.
const minDirection = 0.01

// DefaultDirection is used by directional gestures without a usable
// direction of their own.
var DefaultDirection = r3.Vec{Z: 1}

// Target receives the forces of a gesture. *fluid.Simulator satisfies it.
type Target interface {
	AddExternalForce(pos, force r3.Vec, radius float64) error
	AddRadialForce(pos r3.Vec, strength, radius float64) error
}

// Gesture is one interaction sample: where, which way, how wide, how hard.
type Gesture struct {
	Intent    Intent  `json:"intent" yaml:"intent"`
	Position  r3.Vec  `json:"position" yaml:"position"`
	Direction r3.Vec  `json:"direction" yaml:"direction"`
	Radius    float64 `json:"radius" yaml:"radius"`
	Strength  float64 `json:"strength" yaml:"strength"`
}

// WithDefaults fills a zero Radius or Strength from the given values.
func (g Gesture) WithDefaults(radius, strength float64) Gesture {
	if g.Radius == 0 {
		g.Radius = radius
	}
	if g.Strength == 0 {
		g.Strength = strength
	}
	return g
}

// Force is the uniform force a directional gesture applies before falloff.
func (g Gesture) Force() r3.Vec {
	dir := g.Direction
	if r3.Norm(dir) < minDirection {
		dir = DefaultDirection
	}
	return r3.Scale(g.Strength*g.Intent.Multiplier(), r3.Unit(dir))
}

// Apply queues the gesture's force on t. None is a no-op.
func (g Gesture) Apply(t Target) error {
	switch {
	case g.Intent == None:
		return nil
	case g.Intent.Radial():
		return t.AddRadialForce(g.Position, g.Strength*g.Intent.Multiplier(), g.Radius)
	default:
		return t.AddExternalForce(g.Position, g.Force(), g.Radius)
	}
}
