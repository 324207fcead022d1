package particles

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Layout produces the starting positions of n particles. Implementations are
// deterministic: the same n always yields the same positions.
type Layout interface {
	Positions(n int) []r3.Vec
}

// GridLayout fills a cube with ceil(cbrt(n)) particles per side.
type GridLayout struct {
	Spacing float64
	Center  r3.Vec
}

// Positions fills x fastest, then z, then y, so partial cubes build up from
// the bottom layer.
func (g GridLayout) Positions(n int) []r3.Vec {
	if n <= 0 {
		return nil
	}
	side := int(math.Ceil(math.Cbrt(float64(n))))
	// cbrt rounding can leave side^3 one short
	for side*side*side < n {
		side++
	}

	offset := float64(side-1) / 2
	out := make([]r3.Vec, 0, n)
	for j := 0; j < side && len(out) < n; j++ {
		for k := 0; k < side && len(out) < n; k++ {
			for i := 0; i < side && len(out) < n; i++ {
				out = append(out, r3.Vec{
					X: g.Center.X + (float64(i)-offset)*g.Spacing,
					Y: g.Center.Y + (float64(j)-offset)*g.Spacing,
					Z: g.Center.Z + (float64(k)-offset)*g.Spacing,
				})
			}
		}
	}
	return out
}

// BlockLayout scatters particles uniformly inside a box from a fixed seed.
type BlockLayout struct {
	Box  r3.Box
	Seed uint64
}

func (b BlockLayout) Positions(n int) []r3.Vec {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))
	size := r3.Sub(b.Box.Max, b.Box.Min)
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = r3.Vec{
			X: b.Box.Min.X + rng.Float64()*size.X,
			Y: b.Box.Min.Y + rng.Float64()*size.Y,
			Z: b.Box.Min.Z + rng.Float64()*size.Z,
		}
	}
	return out
}

// PointsLayout places particles at explicit positions, cycling when n is
// larger than the list.
type PointsLayout []r3.Vec

func (p PointsLayout) Positions(n int) []r3.Vec {
	if n <= 0 || len(p) == 0 {
		return make([]r3.Vec, max(n, 0))
	}
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return out
}
