package metrics

import (
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
)

// SeriesColumns are the per-step quantities a Series records, in order.
var SeriesColumns = []string{"kinetic_energy", "mean_height", "clamped", "mean_candidates"}

// Series keeps one row of instantaneous values per recorded step.
type Series struct {
	Mass  float64
	Steps []int
	Rows  [][]float64
}

func NewSeries(mass float64) *Series {
	return &Series{Mass: mass}
}

func (s *Series) Record(snap particles.Snapshot, stats fluid.StepStats) {
	s.Steps = append(s.Steps, snap.Step)
	s.Rows = append(s.Rows, []float64{
		snap.KineticEnergy(s.Mass),
		snap.Centroid().Y,
		float64(stats.Clamped),
		stats.MeanCandidates,
	})
}

func (s *Series) Len() int { return len(s.Rows) }

// Column returns the values of the named column, or nil if unknown.
func (s *Series) Column(name string) []float64 {
	idx := -1
	for i, c := range SeriesColumns {
		if c == name {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[idx]
	}
	return out
}
