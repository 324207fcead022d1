package fluid

import "time"

// StepStats is the health record of one step.
type StepStats struct {
	Step      int
	Particles int
	// Clamped counts particles repaired this step: non-finite state or a
	// density below MinDensity.
	Clamped int
	// MeanCandidates is the mean neighbor-candidate count per particle
	// returned by the spatial index, before distance filtering.
	MeanCandidates float64
	Elapsed        time.Duration
}

// ClampedFraction is Clamped / Particles, 0 for an empty system.
func (s StepStats) ClampedFraction() float64 {
	if s.Particles == 0 {
		return 0
	}
	return float64(s.Clamped) / float64(s.Particles)
}
