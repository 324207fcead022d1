package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCompactSupport(t *testing.T) {
	for _, h := range []float64{0.01, 0.05, 1, 16} {
		set := New(h)
		for _, f := range []float64{1, 1.0000001, 1.5, 10} {
			r := h * f
			rv := r3.Vec{X: r}

			assert.Zero(t, Poly6(r*r, h), "Poly6 h=%v r=%v", h, r)
			assert.Equal(t, r3.Vec{}, SpikyGrad(rv, r, h), "SpikyGrad h=%v r=%v", h, r)
			assert.Zero(t, ViscLaplacian(r, h), "ViscLaplacian h=%v r=%v", h, r)

			assert.Zero(t, set.Density(r*r))
			assert.Equal(t, r3.Vec{}, set.PressureGrad(rv, r))
			assert.Zero(t, set.ViscLaplacian(r))
		}
	}
}

func TestSetMatchesFunctions(t *testing.T) {
	h := 0.05
	set := New(h)

	for _, f := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.99} {
		r := h * f
		rv := r3.Unit(r3.Vec{X: 1, Y: 2, Z: -1})
		rv = r3.Scale(r, rv)

		assert.InEpsilon(t, Poly6(r*r, h), set.Density(r*r), 1e-9)
		assert.InEpsilon(t, ViscLaplacian(r, h), set.ViscLaplacian(r), 1e-9)
		if r > 0 {
			want, got := SpikyGrad(rv, r, h), set.PressureGrad(rv, r)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(want, got)), 1e-9*r3.Norm(want))
		}
	}
	assert.InEpsilon(t, Poly6(0, h), set.SelfDensity(), 1e-12)
}

func TestPoly6Positive(t *testing.T) {
	h := 0.1
	assert.Greater(t, Poly6(0, h), 0.0)

	prev := math.Inf(1)
	for i := 0; i < 10; i++ {
		r := h * float64(i) / 10
		w := Poly6(r*r, h)
		assert.Greater(t, w, 0.0)
		assert.Less(t, w, prev, "Poly6 should decrease with distance")
		prev = w
	}
}

func TestSpikyGradNearZero(t *testing.T) {
	h := 0.05

	assert.Less(t, SpikyGradMag(0, h), 0.0, "magnitude must not vanish at r=0")
	assert.Less(t, SpikyGradMag(1e-6, h), SpikyGradMag(h/2, h), "magnitude grows as r->0")

	// points along rv scaled by a negative magnitude: toward the neighbor
	rv := r3.Vec{X: 0.01}
	g := SpikyGrad(rv, 0.01, h)
	assert.Less(t, g.X, 0.0)
	assert.Zero(t, g.Y)
	assert.Zero(t, g.Z)

	assert.Equal(t, r3.Vec{}, SpikyGrad(r3.Vec{}, 0, h))
}

func TestViscLaplacianFiniteAtZero(t *testing.T) {
	h := 0.05
	v := ViscLaplacian(0, h)
	assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	assert.Greater(t, v, 0.0)
}

func TestDensityNormalization(t *testing.T) {
	// integral of Poly6 over the support ball is 1
	h := 1.0
	steps := 20000
	dr := h / float64(steps)
	sum := 0.0
	for i := 0; i < steps; i++ {
		r := (float64(i) + 0.5) * dr
		sum += Poly6(r*r, h) * 4 * math.Pi * r * r * dr
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}
