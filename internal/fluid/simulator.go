package fluid

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/kernel"
	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

const defaultMinChunk = 32

// Simulator advances an SPH particle system one step at a time.
type Simulator struct {
	params Params
	kern   kernel.Set

	store  *particles.Store
	search spatial.Searcher
	layout particles.Layout
	home   []r3.Vec

	// pass buffers, published into the store once a pass finishes
	density  []float64
	pressure []float64
	force    []r3.Vec

	pending    []r3.Vec
	degenerate []bool
	clamped    []bool
	zeroVel    []bool

	workers  int
	minChunk int
	log      logr.Logger

	step  int
	stats StepStats
}

// New validates p and builds a simulator with n particles placed by the
// configured layout. n == 0 is a valid, inert system.
func New(n int, p Params, opts ...Option) (*Simulator, error) {
	if n < 0 {
		return nil, dynamo.Invalid("num_particles", n, "must not be negative")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		params:     p,
		kern:       kernel.New(p.SmoothingRadius),
		store:      particles.NewStore(n, p.ParticleMass),
		density:    make([]float64, n),
		pressure:   make([]float64, n),
		force:      make([]r3.Vec, n),
		pending:    make([]r3.Vec, n),
		degenerate: make([]bool, n),
		clamped:    make([]bool, n),
		zeroVel:    make([]bool, n),
		minChunk:   defaultMinChunk,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.search == nil {
		s.search = spatial.NewGrid()
	}
	if s.layout == nil {
		s.layout = DefaultLayout(p)
	}

	home := s.layout.Positions(n)
	if len(home) != n {
		return nil, fmt.Errorf("fluid: layout produced %d positions for %d particles", len(home), n)
	}
	for i, pos := range home {
		if !dynamo.Finite(pos) {
			return nil, dynamo.Invalid("layout", i, "non-finite starting position")
		}
	}
	s.home = home
	s.Reset()
	return s, nil
}

// Len returns the particle count.
func (s *Simulator) Len() int { return s.store.Len() }

// Params returns the active parameters.
func (s *Simulator) Params() Params { return s.params }

// Stats returns the bookkeeping of the last step.
func (s *Simulator) Stats() StepStats { return s.stats }

// Pressure returns the pressure of particle i computed by the last step.
func (s *Simulator) Pressure(i int) float64 { return s.store.At(i).Pressure }

// Reconfigure swaps the parameters between steps. The particle count and
// current state are kept.
func (s *Simulator) Reconfigure(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	s.kern = kernel.New(p.SmoothingRadius)
	s.store.SetMass(p.ParticleMass)
	return nil
}

// Reset places every particle back on its starting position and clears all
// dynamic state, including queued external forces.
func (s *Simulator) Reset() {
	s.store.Place(s.home)
	clear(s.density)
	clear(s.pressure)
	clear(s.force)
	clear(s.pending)
	clear(s.degenerate)
	clear(s.clamped)
	clear(s.zeroVel)
	s.step = 0
	s.stats = StepStats{Particles: s.store.Len()}
}

// State returns a snapshot of every particle taken between steps.
func (s *Simulator) State() particles.Snapshot {
	var snap particles.Snapshot
	s.SnapshotInto(&snap)
	return snap
}

// SnapshotInto fills dst, reusing its storage.
func (s *Simulator) SnapshotInto(dst *particles.Snapshot) {
	s.store.Snapshot(dst)
	dst.Step = s.step
}

// Step advances the system by dt. dt must be positive and finite; an invalid
// dt is rejected before any state changes.
func (s *Simulator) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return dynamo.Invalid("dt", dt, "must be positive and finite")
	}

	start := time.Now()
	n := s.store.Len()
	if n == 0 {
		s.step++
		s.stats = StepStats{Step: s.step, Elapsed: time.Since(start)}
		return nil
	}

	clear(s.clamped)
	clear(s.degenerate)
	clear(s.zeroVel)

	s.sanitize()
	if err := s.search.Rebuild(s.store, s.params.EffectiveCellSize()); err != nil {
		return err
	}

	candidates := s.densityPass()
	s.forcePass()
	s.integrate(dt)
	clear(s.pending)

	s.step++
	s.stats = StepStats{
		Step:           s.step,
		Particles:      n,
		Clamped:        countTrue(s.clamped),
		MeanCandidates: float64(candidates) / float64(n),
		Elapsed:        time.Since(start),
	}
	if s.stats.Clamped > 0 {
		s.log.Info("repaired degenerate particles",
			"reason", dynamo.ErrNumericalInstability.Error(),
			"step", s.stats.Step,
			"clamped", s.stats.Clamped,
			"particles", n)
	}
	return nil
}

// sanitize repairs particles that enter the step with non-finite state.
func (s *Simulator) sanitize() {
	ps := s.store.All()
	for i := range ps {
		p := &ps[i]
		if !dynamo.Finite(p.Position) {
			p.Position = s.home[i]
			p.Velocity = r3.Vec{}
			s.clamped[i] = true
		}
		if !dynamo.Finite(p.Velocity) {
			p.Velocity = r3.Vec{}
			s.clamped[i] = true
		}
	}
}

// densityPass estimates density and pressure of every particle. It reads
// positions only and writes the pass buffers.
func (s *Simulator) densityPass() int64 {
	ps := s.store.All()
	h2 := s.kern.H2()
	k, rho0 := s.params.GasConstant, s.params.RestDensity
	var total atomic.Int64

	dynamo.ParallelFor(len(ps), s.minChunk, s.workers, func(start, end int) {
		buf := make([]int, 0, 64)
		seen := 0
		for i := start; i < end; i++ {
			xi := ps[i].Position
			buf = s.search.Collect(xi, buf[:0])
			seen += len(buf)

			rho := 0.0
			for _, j := range buf {
				r2 := r3.Norm2(r3.Sub(xi, ps[j].Position))
				if r2 < h2 {
					rho += ps[j].Mass * s.kern.Density(r2)
				}
			}
			p := math.Max(0, k*(rho-rho0))

			switch {
			case !dynamo.IsFinite(rho) || !dynamo.IsFinite(p):
				rho, p = 0, 0
				s.degenerate[i] = true
				s.clamped[i] = true
			case rho < MinDensity:
				s.degenerate[i] = true
				s.clamped[i] = true
			}
			s.density[i], s.pressure[i] = rho, p
		}
		total.Add(int64(seen))
	})

	for i := range ps {
		ps[i].Density = s.density[i]
		ps[i].Pressure = s.pressure[i]
	}
	return total.Load()
}

// forcePass sums gravity, pressure, viscosity and queued external forces.
// It reads this step's densities and pressures and writes s.force.
func (s *Simulator) forcePass() {
	ps := s.store.All()
	h2 := s.kern.H2()
	g, mu := s.params.Gravity, s.params.Viscosity

	dynamo.ParallelFor(len(ps), s.minChunk, s.workers, func(start, end int) {
		buf := make([]int, 0, 64)
		for i := start; i < end; i++ {
			pi := &ps[i]
			f := r3.Scale(pi.Mass, g)

			buf = s.search.Collect(pi.Position, buf[:0])
			for _, j := range buf {
				if j == i || s.degenerate[j] {
					continue
				}
				pj := &ps[j]
				rv := r3.Sub(pi.Position, pj.Position)
				r2 := r3.Norm2(rv)
				if r2 >= h2 {
					continue
				}
				r := math.Sqrt(r2)

				press := -pj.Mass * (pi.Pressure + pj.Pressure) / (2 * pj.Density)
				f = r3.Add(f, r3.Scale(press, s.kern.PressureGrad(rv, r)))

				visc := mu * pj.Mass * s.kern.ViscLaplacian(r) / pj.Density
				f = r3.Add(f, r3.Scale(visc, r3.Sub(pj.Velocity, pi.Velocity)))
			}

			f = r3.Add(f, s.pending[i])
			if !dynamo.Finite(f) {
				f = r3.Vec{}
				s.zeroVel[i] = true
				s.clamped[i] = true
			}
			s.force[i] = f
		}
	})
}

// integrate applies semi-implicit Euler, then resolves the boundary.
func (s *Simulator) integrate(dt float64) {
	ps := s.store.All()
	drag, maxSpeed := s.params.Drag, s.params.MaxSpeed
	bounds, damping := s.params.Bounds, s.params.BoundaryDamping

	dynamo.ParallelFor(len(ps), s.minChunk, s.workers, func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			p.Force = s.force[i]

			v := p.Velocity
			if s.zeroVel[i] {
				v = r3.Vec{}
			} else {
				v = r3.Add(v, r3.Scale(dt/p.Mass, p.Force))
			}
			if drag != 1 {
				v = r3.Scale(drag, v)
			}
			v = dynamo.ClampSpeed(v, maxSpeed)

			x := r3.Add(p.Position, r3.Scale(dt, v))
			if !dynamo.Finite(x) || !dynamo.Finite(v) {
				x, v = p.Position, r3.Vec{}
				p.Force = r3.Vec{}
				s.clamped[i] = true
			}

			p.Position, p.Velocity = resolveBoundary(x, v, bounds, damping)
		}
	})
}

// resolveBoundary clamps x into the box and reflects the velocity component
// of every axis that crossed it, scaled by damping.
func resolveBoundary(x, v r3.Vec, b r3.Box, damping float64) (r3.Vec, r3.Vec) {
	for axis := 0; axis < 3; axis++ {
		xa := dynamo.Component(x, axis)
		lo, hi := dynamo.Component(b.Min, axis), dynamo.Component(b.Max, axis)
		switch {
		case xa < lo:
			x = dynamo.SetComponent(x, axis, lo)
		case xa > hi:
			x = dynamo.SetComponent(x, axis, hi)
		default:
			continue
		}
		v = dynamo.SetComponent(v, axis, -damping*dynamo.Component(v, axis))
	}
	return x, v
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
