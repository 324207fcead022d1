// Package particles holds the fixed-size particle arena owned by the
// simulator, the read-only snapshots handed to collaborators, and the
// deterministic starting layouts.
package particles

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is one index-addressed record of the arena.
type Particle struct {
	Position r3.Vec
	Velocity r3.Vec
	Force    r3.Vec
	Density  float64
	Pressure float64
	Mass     float64
}

// Store is a contiguous, pre-sized particle arena. The count never changes
// after construction.
type Store struct {
	particles []Particle
}

// NewStore allocates n particles of the given mass at the origin.
func NewStore(n int, mass float64) *Store {
	s := &Store{particles: make([]Particle, n)}
	for i := range s.particles {
		s.particles[i].Mass = mass
	}
	return s
}

// Len returns the particle count.
func (s *Store) Len() int { return len(s.particles) }

// Position returns the position of particle i.
func (s *Store) Position(i int) r3.Vec { return s.particles[i].Position }

// At returns a pointer into the arena. It must not be retained across steps.
func (s *Store) At(i int) *Particle { return &s.particles[i] }

// All exposes the arena for dense iteration by the simulator.
func (s *Store) All() []Particle { return s.particles }

// SetMass assigns m to every particle.
func (s *Store) SetMass(m float64) {
	for i := range s.particles {
		s.particles[i].Mass = m
	}
}

// Place moves every particle to the matching position in pos and zeroes the
// dynamic state. len(pos) must equal Len.
func (s *Store) Place(pos []r3.Vec) {
	for i := range s.particles {
		p := &s.particles[i]
		p.Position = pos[i]
		p.Velocity = r3.Vec{}
		p.Force = r3.Vec{}
		p.Density = 0
		p.Pressure = 0
	}
}

// Snapshot copies position, velocity and density of every particle into dst,
// reusing its storage.
func (s *Store) Snapshot(dst *Snapshot) {
	n := len(s.particles)
	if cap(dst.States) < n {
		dst.States = make([]State, n)
	}
	dst.States = dst.States[:n]
	for i := range s.particles {
		p := &s.particles[i]
		dst.States[i] = State{Position: p.Position, Velocity: p.Velocity, Density: p.Density}
	}
}
