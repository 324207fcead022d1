package particles

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the externally visible part of one particle.
type State struct {
	Position r3.Vec
	Velocity r3.Vec
	Density  float64
}

// Snapshot is an ordered, consistent copy of particle state taken between
// steps.
type Snapshot struct {
	Step   int
	States []State
}

// Len returns the number of particles in the snapshot.
func (s Snapshot) Len() int { return len(s.States) }

// Position returns the position of particle i.
func (s Snapshot) Position(i int) r3.Vec { return s.States[i].Position }

// Positions returns a fresh slice of every position.
func (s Snapshot) Positions() []r3.Vec {
	out := make([]r3.Vec, len(s.States))
	for i, st := range s.States {
		out[i] = st.Position
	}
	return out
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{Step: s.Step, States: make([]State, len(s.States))}
	copy(c.States, s.States)
	return c
}

// Centroid returns the mean position, or the zero vector when empty.
func (s Snapshot) Centroid() r3.Vec {
	if len(s.States) == 0 {
		return r3.Vec{}
	}
	var c r3.Vec
	for _, st := range s.States {
		c = r3.Add(c, st.Position)
	}
	return r3.Scale(1/float64(len(s.States)), c)
}

// KineticEnergy returns the total 0.5*m*|v|^2 with uniform mass m.
func (s Snapshot) KineticEnergy(mass float64) float64 {
	e := 0.0
	for _, st := range s.States {
		e += 0.5 * mass * r3.Norm2(st.Velocity)
	}
	return e
}
