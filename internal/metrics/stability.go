package metrics

import (
	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stability is the fraction of steps without a violation. A step violates
// when any particle was clamped, any state is non-finite, or (with a
// positive speedLimit) any particle is faster than speedLimit.
type Stability struct {
	name       string
	speedLimit float64
	violations int
	samples    int
}

func NewStability(speedLimit float64) *Stability {
	return &Stability{
		name:       "stability",
		speedLimit: speedLimit,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap particles.Snapshot, stats fluid.StepStats) {
	s.samples++
	if stats.Clamped > 0 {
		s.violations++
		return
	}
	lim2 := s.speedLimit * s.speedLimit
	for _, st := range snap.States {
		if !dynamo.Finite(st.Position) || !dynamo.Finite(st.Velocity) ||
			(s.speedLimit > 0 && r3.Norm2(st.Velocity) > lim2) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
