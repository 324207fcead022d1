package metrics

import (
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
)

// Metric accumulates one scalar over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(snap particles.Snapshot, stats fluid.StepStats)
	Value() float64
	Reset()
}

// Default returns the metrics recorded for every stored run.
func Default(mass float64) []Metric {
	return []Metric{
		NewKineticEnergy(mass),
		NewPeakSpeed(),
		NewMeanHeight(),
		NewClampFraction(),
		NewStability(0),
	}
}

// Values collects the current value of every metric by name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
