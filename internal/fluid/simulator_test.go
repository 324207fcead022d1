package fluid_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/kernel"
	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

func mustNew(n int, p fluid.Params, opts ...fluid.Option) *fluid.Simulator {
	GinkgoHelper()
	sim, err := fluid.New(n, p, opts...)
	Expect(err).NotTo(HaveOccurred())
	return sim
}

func zeroG() fluid.Params {
	p := fluid.DefaultParams()
	p.Gravity = r3.Vec{}
	return p
}

// metreScale uses a 1m smoothing radius so pressure accelerations stay
// moderate at the default time step.
func metreScale() fluid.Params {
	return fluid.Params{
		SmoothingRadius: 1.0,
		RestDensity:     1000,
		GasConstant:     1000,
		Viscosity:       0.5,
		Gravity:         r3.Vec{Y: -9.8},
		ParticleMass:    340,
		TimeStep:        0.016,
		BoundaryDamping: 0.5,
		Bounds:          r3.Box{Min: r3.Vec{X: -5, Y: -1, Z: -5}, Max: r3.Vec{X: 5, Y: 5, Z: 5}},
		Drag:            1,
	}
}

func expectFinite(snap particles.Snapshot) {
	GinkgoHelper()
	for i, st := range snap.States {
		Expect(dynamo.Finite(st.Position)).To(BeTrue(), "position of %d: %v", i, st.Position)
		Expect(dynamo.Finite(st.Velocity)).To(BeTrue(), "velocity of %d: %v", i, st.Velocity)
		Expect(dynamo.IsFinite(st.Density)).To(BeTrue(), "density of %d: %v", i, st.Density)
	}
}

var _ = Describe("Simulator", func() {
	Describe("construction", func() {
		It("rejects invalid parameters before building anything", func() {
			p := fluid.DefaultParams()
			p.SmoothingRadius = 0
			sim, err := fluid.New(10, p)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(sim).To(BeNil())
		})

		It("rejects a negative particle count", func() {
			_, err := fluid.New(-1, fluid.DefaultParams())
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("places particles with the default layout inside the box", func() {
			sim := mustNew(125, fluid.DefaultParams())
			snap := sim.State()
			Expect(snap.Len()).To(Equal(125))
			b := sim.Params().Bounds
			for _, st := range snap.States {
				Expect(st.Position.X).To(BeNumerically(">=", b.Min.X))
				Expect(st.Position.Y).To(BeNumerically("<=", b.Max.Y))
				Expect(st.Velocity).To(Equal(r3.Vec{}))
			}
		})
	})

	Describe("Step", func() {
		It("rejects non-positive or non-finite dt without touching state", func() {
			sim := mustNew(27, fluid.DefaultParams())
			before := sim.State()
			for _, dt := range []float64{0, -0.016, math.NaN(), math.Inf(1)} {
				Expect(sim.Step(dt)).To(MatchError(dynamo.ErrInvalidParameter))
			}
			Expect(sim.State()).To(Equal(before))
		})

		It("treats an empty system as a no-op", func() {
			sim := mustNew(0, fluid.DefaultParams())
			for i := 0; i < 3; i++ {
				Expect(sim.Step(0.016)).To(Succeed())
			}
			Expect(sim.State().Len()).To(BeZero())
			Expect(sim.Stats().Step).To(Equal(3))
			Expect(sim.Stats().ClampedFraction()).To(BeZero())
		})

		It("gives an isolated particle exactly its self density", func() {
			p := zeroG()
			sim := mustNew(1, p, fluid.WithLayout(particles.PointsLayout{{}}))
			Expect(sim.Step(p.TimeStep)).To(Succeed())

			want := p.ParticleMass * kernel.Poly6(0, p.SmoothingRadius)
			Expect(want).To(BeNumerically(">", 0))
			Expect(sim.State().States[0].Density).To(BeNumerically("~", want, want*1e-12))
			Expect(sim.Pressure(0)).To(BeZero(), "under-dense pressure is clamped")
		})

		It("halves and inverts vertical velocity on a floor bounce", func() {
			p := fluid.DefaultParams()
			p.BoundaryDamping = 0.5
			p.Bounds = r3.Box{Min: r3.Vec{X: -10, Y: 0, Z: -10}, Max: r3.Vec{X: 10, Y: 10, Z: 10}}
			sim := mustNew(1, p, fluid.WithLayout(particles.PointsLayout{{Y: 0.5}}))

			bounced := false
			for i := 0; i < 200 && !bounced; i++ {
				v0 := sim.State().States[0].Velocity.Y
				Expect(sim.Step(p.TimeStep)).To(Succeed())

				st := sim.State().States[0]
				if st.Position.Y > 0 {
					continue
				}
				bounced = true
				pre := v0 + (p.TimeStep/p.ParticleMass)*(p.ParticleMass*p.Gravity.Y)
				Expect(pre).To(BeNumerically("<", 0))
				Expect(st.Velocity.Y).To(BeNumerically("~", -0.5*pre, 1e-12))
				Expect(st.Velocity.Y).To(BeNumerically(">", 0))
				Expect(st.Position.Y).To(BeZero())
			}
			Expect(bounced).To(BeTrue(), "particle never reached the floor")
		})

		It("keeps a symmetric pair symmetric about the origin", func() {
			p := metreScale()
			p.Gravity = r3.Vec{}
			p.ParticleMass = 600
			p.GasConstant = 10
			d := 0.25 * p.SmoothingRadius
			sim := mustNew(2, p, fluid.WithLayout(particles.PointsLayout{{X: -d}, {X: d}}))

			for i := 0; i < 100; i++ {
				Expect(sim.Step(p.TimeStep)).To(Succeed())
				s := sim.State().States
				Expect(s[0].Position.X).To(BeNumerically("~", -s[1].Position.X, 1e-12))
				Expect(s[0].Position.Y).To(BeNumerically("~", -s[1].Position.Y, 1e-12))
				Expect(s[0].Position.Z).To(BeNumerically("~", -s[1].Position.Z, 1e-12))
				Expect(s[0].Velocity.X).To(BeNumerically("~", -s[1].Velocity.X, 1e-12))
			}
			Expect(sim.State().States[1].Position.X).To(BeNumerically(">", d), "pressure should push the pair apart")
		})

		It("stays finite when densities underflow", func() {
			p := fluid.DefaultParams()
			p.ParticleMass = 1e-320
			sim := mustNew(27, p)

			for i := 0; i < 5; i++ {
				Expect(sim.Step(p.TimeStep)).To(Succeed())
				expectFinite(sim.State())
			}
			Expect(sim.Stats().Clamped).To(Equal(27))
			Expect(sim.Stats().ClampedFraction()).To(Equal(1.0))
		})

		It("is independent of the worker count", func() {
			p := fluid.DefaultParams()
			a := mustNew(343, p, fluid.WithWorkers(1))
			b := mustNew(343, p, fluid.WithWorkers(6), fluid.WithMinChunk(8))
			for i := 0; i < 10; i++ {
				Expect(a.Step(p.TimeStep)).To(Succeed())
				Expect(b.Step(p.TimeStep)).To(Succeed())
			}
			Expect(a.State()).To(Equal(b.State()))
		})

		It("agrees with brute-force neighbor search", func() {
			p := fluid.DefaultParams()
			grid := mustNew(216, p)
			brute := mustNew(216, p, fluid.WithSearcher(spatial.NewBruteForce()))
			for i := 0; i < 5; i++ {
				Expect(grid.Step(p.TimeStep)).To(Succeed())
				Expect(brute.Step(p.TimeStep)).To(Succeed())
			}

			gs, bs := grid.State().States, brute.State().States
			for i := range gs {
				Expect(r3.Norm(r3.Sub(gs[i].Position, bs[i].Position))).To(BeNumerically("<", 1e-9))
				Expect(gs[i].Density).To(BeNumerically("~", bs[i].Density, 1e-6*bs[i].Density+1e-9))
			}
			Expect(grid.Stats().MeanCandidates).To(BeNumerically("<", brute.Stats().MeanCandidates))
		})

		It("reports healthy stats for a normal run", func() {
			p := fluid.DefaultParams()
			sim := mustNew(125, p)
			Expect(sim.Step(p.TimeStep)).To(Succeed())

			st := sim.Stats()
			Expect(st.Step).To(Equal(1))
			Expect(st.Particles).To(Equal(125))
			Expect(st.Clamped).To(BeZero())
			Expect(st.MeanCandidates).To(BeNumerically(">=", 1))
			Expect(sim.State().Step).To(Equal(1))
		})
	})

	Describe("Reset", func() {
		It("is idempotent and matches a fresh simulator", func() {
			p := fluid.DefaultParams()
			sim := mustNew(64, p)
			fresh := sim.State()

			for i := 0; i < 10; i++ {
				Expect(sim.Step(p.TimeStep)).To(Succeed())
			}
			Expect(sim.AddExternalForce(r3.Vec{}, r3.Vec{X: 1}, 1)).To(Succeed())

			sim.Reset()
			first := sim.State()
			Expect(sim.Step(p.TimeStep)).To(Succeed())
			sim.Reset()
			second := sim.State()

			Expect(first).To(Equal(second))
			Expect(first).To(Equal(fresh))
			Expect(sim.Pending(0)).To(Equal(r3.Vec{}))
			Expect(sim.Stats().Step).To(BeZero())
		})
	})

	Describe("external forces", func() {
		var (
			p   fluid.Params
			sim *fluid.Simulator
		)

		BeforeEach(func() {
			p = zeroG()
			sim = mustNew(2, p, fluid.WithLayout(particles.PointsLayout{{X: 0.1}, {X: 0.9}}))
		})

		It("applies linear falloff inside the radius only", func() {
			Expect(sim.AddExternalForce(r3.Vec{}, r3.Vec{X: 10}, 0.3)).To(Succeed())
			Expect(sim.Pending(0).X).To(BeNumerically("~", 10*(1-0.1/0.3), 1e-12))
			Expect(sim.Pending(1)).To(Equal(r3.Vec{}))

			Expect(sim.Step(p.TimeStep)).To(Succeed())
			v := sim.State().States[0].Velocity.X
			want := 10 * (1 - 0.1/0.3) / p.ParticleMass * p.TimeStep
			Expect(v).To(BeNumerically("~", want, 1e-9))
			Expect(sim.State().States[1].Velocity).To(Equal(r3.Vec{}))
		})

		It("contributes to the next step only", func() {
			Expect(sim.AddExternalForce(r3.Vec{}, r3.Vec{X: 10}, 0.3)).To(Succeed())
			Expect(sim.Step(p.TimeStep)).To(Succeed())
			v1 := sim.State().States[0].Velocity
			Expect(sim.Step(p.TimeStep)).To(Succeed())
			Expect(sim.State().States[0].Velocity).To(Equal(v1))
		})

		It("pushes or pulls radially", func() {
			Expect(sim.AddRadialForce(r3.Vec{}, 5, 0.5)).To(Succeed())
			Expect(sim.Pending(0).X).To(BeNumerically(">", 0))

			sim.Reset()
			Expect(sim.AddRadialForce(r3.Vec{}, -5, 0.5)).To(Succeed())
			Expect(sim.Pending(0).X).To(BeNumerically("<", 0))
			Expect(sim.Pending(1)).To(Equal(r3.Vec{}))
		})

		It("saturates the queued sum instead of overflowing", func() {
			Expect(sim.AddExternalForce(r3.Vec{X: 0.1}, r3.Vec{X: 1.7e308}, 0.3)).To(Succeed())
			Expect(sim.AddExternalForce(r3.Vec{X: 0.1}, r3.Vec{X: 1.7e308}, 0.3)).To(Succeed())
			Expect(sim.Pending(0).X).To(Equal(math.MaxFloat64))
			Expect(dynamo.Finite(sim.Pending(0))).To(BeTrue())
		})

		It("repairs a force that overflows in the force pass", func() {
			p.Gravity = r3.Vec{X: 1e308}
			sim = mustNew(1, p, fluid.WithLayout(particles.PointsLayout{{X: 0.1}}))
			Expect(sim.AddExternalForce(r3.Vec{X: 0.1}, r3.Vec{X: math.MaxFloat64}, 0.3)).To(Succeed())

			Expect(sim.Step(p.TimeStep)).To(Succeed())
			expectFinite(sim.State())
			st := sim.State().States[0]
			Expect(st.Velocity).To(Equal(r3.Vec{}))
			Expect(st.Position).To(Equal(r3.Vec{X: 0.1}))
			Expect(sim.Stats().Clamped).To(Equal(1))
		})

		It("repairs a velocity that overflows in integration", func() {
			p.ParticleMass = 1e-3
			sim = mustNew(1, p, fluid.WithLayout(particles.PointsLayout{{X: 0.1}}))
			Expect(sim.AddExternalForce(r3.Vec{X: 0.1}, r3.Vec{X: 1.7e308}, 0.3)).To(Succeed())

			Expect(sim.Step(p.TimeStep)).To(Succeed())
			expectFinite(sim.State())
			st := sim.State().States[0]
			Expect(st.Velocity).To(Equal(r3.Vec{}))
			Expect(st.Position).To(Equal(r3.Vec{X: 0.1}))
			Expect(sim.Stats().Clamped).To(Equal(1))
		})

		It("rejects bad input", func() {
			Expect(sim.AddExternalForce(r3.Vec{}, r3.Vec{X: 1}, 0)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(sim.AddExternalForce(r3.Vec{}, r3.Vec{X: math.NaN()}, 1)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(sim.AddExternalForce(r3.Vec{Y: math.Inf(1)}, r3.Vec{}, 1)).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(sim.AddRadialForce(r3.Vec{}, math.NaN(), 1)).To(MatchError(dynamo.ErrInvalidParameter))
		})
	})

	Describe("end-to-end 2x2 drop", func() {
		It("falls, stays finite and keeps its spacing", func() {
			p := metreScale()
			s := 0.5 * p.SmoothingRadius
			layout := particles.PointsLayout{{}, {X: s}, {Z: s}, {X: s, Z: s}}
			sim := mustNew(4, p, fluid.WithLayout(layout))

			Expect(sim.Step(p.TimeStep)).To(Succeed())
			for i := 0; i < 4; i++ {
				Expect(sim.Pressure(i)).To(BeNumerically(">", 0), "particle %d should be over-dense", i)
			}
			for i := 1; i < 60; i++ {
				Expect(sim.Step(p.TimeStep)).To(Succeed())
			}

			snap := sim.State()
			expectFinite(snap)
			for i, st := range snap.States {
				Expect(st.Position.Y).To(BeNumerically("<", layout[i].Y))
				for j := i + 1; j < len(snap.States); j++ {
					d := r3.Norm(r3.Sub(st.Position, snap.States[j].Position))
					Expect(d).To(BeNumerically(">=", 0.25*p.SmoothingRadius))
				}
			}
			Expect(sim.Stats().Clamped).To(BeZero())
		})
	})
})
