package metrics

import (
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
)

// MeanHeight averages the centroid height over the run.
type MeanHeight struct {
	name    string
	sum     float64
	samples int
}

func NewMeanHeight() *MeanHeight {
	return &MeanHeight{name: "mean_height"}
}

func (m *MeanHeight) Name() string { return m.name }

func (m *MeanHeight) Observe(snap particles.Snapshot, _ fluid.StepStats) {
	if snap.Len() == 0 {
		return
	}
	m.sum += snap.Centroid().Y
	m.samples++
}

func (m *MeanHeight) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanHeight) Reset() {
	m.sum = 0
	m.samples = 0
}
