package interaction

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Buttons is the pointer button state of one frame.
type Buttons struct {
	Primary   bool
	Secondary bool
	// Modifier turns a primary press into a push.
	Modifier bool
}

// Intent maps the buttons to a gesture: primary repels, secondary attracts,
// primary with the modifier pushes.
func (b Buttons) Intent() Intent {
	switch {
	case b.Primary && b.Modifier:
		return Push
	case b.Primary:
		return Repel
	case b.Secondary:
		return Attract
	default:
		return None
	}
}

// PlaneHit intersects a pick ray with the plane z = depth. ok is false when
// the ray runs parallel to the plane or the plane lies behind the origin.
func PlaneHit(origin, dir r3.Vec, depth float64) (hit r3.Vec, ok bool) {
	if math.Abs(dir.Z) < 1e-12 {
		return r3.Vec{}, false
	}
	t := (depth - origin.Z) / dir.Z
	if t <= 0 {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(t, dir)), true
}
