// Package kernel holds the SPH smoothing kernels (Müller et al. 2003).
//
// Every kernel has compact support: it is exactly zero at and beyond the
// smoothing radius h, which is what lets neighbor search stop at h.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MinSeparation is the distance below which the spiky gradient direction is
// undefined and a zero vector is returned.
const MinSeparation = 1e-9

// Poly6 is the density kernel, taking the squared separation.
func Poly6(r2, h float64) float64 {
	h2 := h * h
	if r2 >= h2 || r2 < 0 {
		return 0
	}
	d := h2 - r2
	return 315.0 / (64.0 * math.Pi * math.Pow(h2, 4.5)) * d * d * d
}

// SpikyGradMag is the signed magnitude of the spiky gradient, negative inside
// the support and zero outside. It stays non-zero as r -> 0.
func SpikyGradMag(r, h float64) float64 {
	if r >= h || r < 0 {
		return 0
	}
	d := h - r
	return -45.0 / (math.Pi * math.Pow(h, 6)) * d * d
}

// SpikyGrad is the pressure-gradient kernel for rv = ri - rj with r = |rv|.
func SpikyGrad(rv r3.Vec, r, h float64) r3.Vec {
	if r >= h || r < MinSeparation {
		return r3.Vec{}
	}
	return r3.Scale(SpikyGradMag(r, h)/r, rv)
}

// ViscLaplacian is the viscosity kernel laplacian.
func ViscLaplacian(r, h float64) float64 {
	if r >= h || r < 0 {
		return 0
	}
	return 45.0 / (math.Pi * math.Pow(h, 6)) * (h - r)
}

// Set binds the kernels to one smoothing radius with the normalization
// constants computed once.
type Set struct {
	h, h2     float64
	poly6     float64
	spiky     float64
	viscosity float64
}

// New precomputes the kernel constants for radius h.
func New(h float64) Set {
	return Set{
		h:         h,
		h2:        h * h,
		poly6:     315.0 / (64.0 * math.Pi * math.Pow(h, 9)),
		spiky:     -45.0 / (math.Pi * math.Pow(h, 6)),
		viscosity: 45.0 / (math.Pi * math.Pow(h, 6)),
	}
}

// H returns the smoothing radius.
func (s Set) H() float64 { return s.h }

// H2 returns the squared smoothing radius.
func (s Set) H2() float64 { return s.h2 }

// Density evaluates Poly6 for squared separation r2.
func (s Set) Density(r2 float64) float64 {
	if r2 >= s.h2 || r2 < 0 {
		return 0
	}
	d := s.h2 - r2
	return s.poly6 * d * d * d
}

// SelfDensity is Density(0): the contribution of a particle to itself.
func (s Set) SelfDensity() float64 {
	return s.poly6 * s.h2 * s.h2 * s.h2
}

// PressureGrad evaluates SpikyGrad for rv with length r.
func (s Set) PressureGrad(rv r3.Vec, r float64) r3.Vec {
	if r >= s.h || r < MinSeparation {
		return r3.Vec{}
	}
	d := s.h - r
	return r3.Scale(s.spiky*d*d/r, rv)
}

// ViscLaplacian evaluates the viscosity laplacian at separation r.
func (s Set) ViscLaplacian(r float64) float64 {
	if r >= s.h || r < 0 {
		return 0
	}
	return s.viscosity * (s.h - r)
}
