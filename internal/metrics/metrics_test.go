package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

func snapshot(states ...particles.State) particles.Snapshot {
	return particles.Snapshot{States: states}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(2.0)

	m.Observe(snapshot(particles.State{Velocity: r3.Vec{X: 3, Y: 4}}), fluid.StepStats{})
	if math.Abs(m.Value()-25) > 1e-12 {
		t.Errorf("expected energy 25, got %f", m.Value())
	}

	m.Observe(snapshot(particles.State{}), fluid.StepStats{})
	if math.Abs(m.Value()-12.5) > 1e-12 {
		t.Errorf("expected mean energy 12.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestPeakSpeed(t *testing.T) {
	m := NewPeakSpeed()
	m.Observe(snapshot(particles.State{Velocity: r3.Vec{Z: -2}}, particles.State{Velocity: r3.Vec{X: 1}}), fluid.StepStats{})
	m.Observe(snapshot(particles.State{Velocity: r3.Vec{X: 0.5}}), fluid.StepStats{})
	if m.Value() != 2 {
		t.Errorf("expected peak 2, got %f", m.Value())
	}
}

func TestMeanHeight(t *testing.T) {
	m := NewMeanHeight()
	m.Observe(snapshot(), fluid.StepStats{})
	if m.Value() != 0 {
		t.Error("empty snapshot should not count")
	}
	m.Observe(snapshot(particles.State{Position: r3.Vec{Y: 1}}, particles.State{Position: r3.Vec{Y: 3}}), fluid.StepStats{})
	m.Observe(snapshot(particles.State{Position: r3.Vec{Y: 0}}), fluid.StepStats{})
	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("expected mean height 1, got %f", m.Value())
	}
}

func TestClampFraction(t *testing.T) {
	m := NewClampFraction()
	m.Observe(snapshot(), fluid.StepStats{Particles: 10, Clamped: 5})
	m.Observe(snapshot(), fluid.StepStats{Particles: 10})
	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected 0.25, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1 {
		t.Error("no samples should be fully stable")
	}

	ok := snapshot(particles.State{Velocity: r3.Vec{X: 1}})
	m.Observe(ok, fluid.StepStats{})
	m.Observe(ok, fluid.StepStats{Clamped: 1})
	m.Observe(snapshot(particles.State{Velocity: r3.Vec{Y: 11}}), fluid.StepStats{})
	m.Observe(snapshot(particles.State{Position: r3.Vec{X: math.NaN()}}), fluid.StepStats{})

	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected stability 0.25, got %f", m.Value())
	}
}

func TestSeries(t *testing.T) {
	s := NewSeries(1)
	s.Record(particles.Snapshot{Step: 1, States: []particles.State{{Position: r3.Vec{Y: 2}, Velocity: r3.Vec{X: 2}}}},
		fluid.StepStats{Clamped: 3, MeanCandidates: 4})

	if s.Len() != 1 || s.Steps[0] != 1 {
		t.Fatalf("unexpected series: %+v", s)
	}
	want := map[string]float64{"kinetic_energy": 2, "mean_height": 2, "clamped": 3, "mean_candidates": 4}
	for name, v := range want {
		if got := s.Column(name); len(got) != 1 || got[0] != v {
			t.Errorf("%s = %v, want %v", name, got, v)
		}
	}
	if s.Column("nope") != nil {
		t.Error("unknown column should be nil")
	}
}

func TestDefaultOverRun(t *testing.T) {
	p := fluid.DefaultParams()
	sim, err := fluid.New(64, p)
	if err != nil {
		t.Fatal(err)
	}
	ms := Default(p.ParticleMass)
	for i := 0; i < 20; i++ {
		if err := sim.Step(p.TimeStep); err != nil {
			t.Fatal(err)
		}
		for _, m := range ms {
			m.Observe(sim.State(), sim.Stats())
		}
	}

	vals := Values(ms)
	if len(vals) != len(ms) {
		t.Fatalf("expected %d values, got %d", len(ms), len(vals))
	}
	if vals["stability"] != 1 || vals["clamp_fraction"] != 0 {
		t.Errorf("healthy run reported faults: %v", vals)
	}
	if vals["kinetic_energy"] <= 0 || vals["peak_speed"] <= 0 {
		t.Errorf("falling fluid should have kinetic energy: %v", vals)
	}
}
