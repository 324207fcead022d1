package metrics

import (
	"math"

	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

type KineticEnergy struct {
	name    string
	mass    float64
	samples int
	total   float64
}

func NewKineticEnergy(mass float64) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		mass: mass,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(snap particles.Snapshot, _ fluid.StepStats) {
	e.total += snap.KineticEnergy(e.mass)
	e.samples++
}

// Value is the mean total kinetic energy over the observed steps.
func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// PeakSpeed is the largest particle speed seen during the run.
type PeakSpeed struct {
	name string
	max  float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(snap particles.Snapshot, _ fluid.StepStats) {
	for _, st := range snap.States {
		p.max = math.Max(p.max, r3.Norm(st.Velocity))
	}
}

func (p *PeakSpeed) Value() float64 { return p.max }

func (p *PeakSpeed) Reset() { p.max = 0 }
