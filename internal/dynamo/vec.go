package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether every component of v is finite.
func Finite(v r3.Vec) bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// ClampSpeed rescales v so its norm does not exceed max. max <= 0 disables it.
func ClampSpeed(v r3.Vec, max float64) r3.Vec {
	if max <= 0 {
		return v
	}
	s2 := r3.Norm2(v)
	if s2 <= max*max {
		return v
	}
	return r3.Scale(max/math.Sqrt(s2), v)
}

// Component returns axis 0, 1 or 2 of v.
func Component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// SetComponent returns v with axis replaced by val.
func SetComponent(v r3.Vec, axis int, val float64) r3.Vec {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}
