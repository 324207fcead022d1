package fluid

import (
	"math"

	"github.com/san-kum/sphfluid/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinDensity is the density below which a particle is treated as degenerate:
// it gets no pressure and is skipped as a neighbor.
const MinDensity = 1e-9

// Params are the physical constants of a run.
type Params struct {
	SmoothingRadius float64
	RestDensity     float64
	GasConstant     float64
	Viscosity       float64
	Gravity         r3.Vec
	ParticleMass    float64
	TimeStep        float64
	BoundaryDamping float64
	Bounds          r3.Box

	// Drag multiplies every velocity once per step; 1 disables it.
	Drag float64
	// MaxSpeed caps particle speed after integration; 0 disables it.
	MaxSpeed float64
	// CellSize of the spatial index; 0 means SmoothingRadius.
	CellSize float64
}

// DefaultParams returns a water-like configuration in a 2m cube.
func DefaultParams() Params {
	return Params{
		SmoothingRadius: 0.05,
		RestDensity:     1000.0,
		GasConstant:     2000.0,
		Viscosity:       0.5,
		Gravity:         r3.Vec{Y: -9.8},
		ParticleMass:    0.02,
		TimeStep:        0.016,
		BoundaryDamping: 0.3,
		Bounds: r3.Box{
			Min: r3.Vec{X: -1, Y: -1, Z: -1},
			Max: r3.Vec{X: 1, Y: 1, Z: 1},
		},
		Drag: 1.0,
	}
}

// EffectiveCellSize resolves CellSize against the smoothing radius.
func (p Params) EffectiveCellSize() float64 {
	if p.CellSize == 0 {
		return p.SmoothingRadius
	}
	return p.CellSize
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return dynamo.Invalid(name, v, "must be positive and finite")
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return dynamo.Invalid(name, v, "must be non-negative and finite")
	}
	return nil
}

// Validate checks every parameter and returns the first violation as a
// *dynamo.ParamError.
func (p Params) Validate() error {
	checks := []error{
		positive("smoothing_radius", p.SmoothingRadius),
		positive("rest_density", p.RestDensity),
		positive("particle_mass", p.ParticleMass),
		positive("time_step", p.TimeStep),
		nonNegative("gas_constant", p.GasConstant),
		nonNegative("viscosity", p.Viscosity),
		nonNegative("max_speed", p.MaxSpeed),
		nonNegative("cell_size", p.CellSize),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if !(p.BoundaryDamping >= 0 && p.BoundaryDamping <= 1) {
		return dynamo.Invalid("boundary_damping", p.BoundaryDamping, "must be within [0, 1]")
	}
	if !(p.Drag > 0 && p.Drag <= 1) {
		return dynamo.Invalid("drag", p.Drag, "must be within (0, 1]")
	}
	if !dynamo.Finite(p.Gravity) {
		return dynamo.Invalid("gravity", p.Gravity, "must be finite")
	}
	if p.CellSize != 0 && p.CellSize < p.SmoothingRadius {
		return dynamo.Invalid("cell_size", p.CellSize, "must be >= smoothing_radius")
	}

	b := p.Bounds
	if !dynamo.Finite(b.Min) || !dynamo.Finite(b.Max) {
		return dynamo.Invalid("bounds", b, "must be finite")
	}
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		return dynamo.Invalid("bounds", b, "min must not exceed max")
	}
	return nil
}
