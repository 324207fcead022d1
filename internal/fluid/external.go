package fluid

import (
	"math"

	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

func checkSource(pos r3.Vec, radius float64) error {
	if !dynamo.Finite(pos) {
		return dynamo.Invalid("position", pos, "must be finite")
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return dynamo.Invalid("radius", radius, "must be positive and finite")
	}
	return nil
}

// AddExternalForce queues force, scaled by the linear falloff 1 - d/radius,
// on every particle closer than radius to pos. The contribution is summed
// into the next Step at full magnitude and then discarded.
func (s *Simulator) AddExternalForce(pos, force r3.Vec, radius float64) error {
	if err := checkSource(pos, radius); err != nil {
		return err
	}
	if !dynamo.Finite(force) {
		return dynamo.Invalid("force", force, "must be finite")
	}

	ps := s.store.All()
	for i := range ps {
		d := r3.Norm(r3.Sub(ps[i].Position, pos))
		if d < radius {
			s.pending[i] = saturatingAdd(s.pending[i], r3.Scale(1-d/radius, force))
		}
	}
	return nil
}

// AddRadialForce queues a force along the direction from pos to each particle
// closer than radius, with the same linear falloff. Positive strength pushes
// particles away, negative strength pulls them in. A particle sitting on pos
// has no direction and is left alone.
func (s *Simulator) AddRadialForce(pos r3.Vec, strength, radius float64) error {
	if err := checkSource(pos, radius); err != nil {
		return err
	}
	if !dynamo.IsFinite(strength) {
		return dynamo.Invalid("strength", strength, "must be finite")
	}

	ps := s.store.All()
	for i := range ps {
		rv := r3.Sub(ps[i].Position, pos)
		d := r3.Norm(rv)
		if d >= radius || d < kernel.MinSeparation {
			continue
		}
		mag := strength * (1 - d/radius) / d
		s.pending[i] = saturatingAdd(s.pending[i], r3.Scale(mag, rv))
	}
	return nil
}

// saturatingAdd sums two finite vectors, holding each component within
// ±math.MaxFloat64 so queued forces stay finite.
func saturatingAdd(a, b r3.Vec) r3.Vec {
	sat := func(x float64) float64 { return math.Max(-math.MaxFloat64, math.Min(math.MaxFloat64, x)) }
	return r3.Vec{X: sat(a.X + b.X), Y: sat(a.Y + b.Y), Z: sat(a.Z + b.Z)}
}

// Pending returns the external force queued for particle i.
func (s *Simulator) Pending(i int) r3.Vec { return s.pending[i] }
