package stream

import (
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/interaction"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is the snapshot broadcast to every client after a step.
type Frame struct {
	Type       string       `json:"type"`
	Step       int          `json:"step"`
	Positions  [][3]float64 `json:"positions"`
	Velocities [][3]float64 `json:"velocities"`
	Densities  []float64    `json:"densities"`
	Clamped    int          `json:"clamped"`
}

func vec(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func NewFrame(snap particles.Snapshot, stats fluid.StepStats) Frame {
	f := Frame{
		Type:       "frame",
		Step:       snap.Step,
		Positions:  make([][3]float64, len(snap.States)),
		Velocities: make([][3]float64, len(snap.States)),
		Densities:  make([]float64, len(snap.States)),
		Clamped:    stats.Clamped,
	}
	for i, st := range snap.States {
		f.Positions[i] = vec(st.Position)
		f.Velocities[i] = vec(st.Velocity)
		f.Densities[i] = st.Density
	}
	return f
}

// Inbound message types.
const (
	MsgGesture = "gesture"
	MsgReset   = "reset"
	MsgPause   = "pause"
	MsgResume  = "resume"
)

// Message is sent by clients. Gesture is required for MsgGesture.
type Message struct {
	Type    string          `json:"type"`
	Gesture *GestureMessage `json:"gesture,omitempty"`
}

// GestureMessage is the wire form of interaction.Gesture. Zero radius,
// strength or direction fall back to the server's interaction defaults.
type GestureMessage struct {
	Intent    interaction.Intent `json:"intent"`
	Position  [3]float64         `json:"position"`
	Direction [3]float64         `json:"direction"`
	Radius    float64            `json:"radius,omitempty"`
	Strength  float64            `json:"strength,omitempty"`
}

func (g GestureMessage) Gesture(defaults config.InteractionConfig) interaction.Gesture {
	dir := r3.Vec{X: g.Direction[0], Y: g.Direction[1], Z: g.Direction[2]}
	if dir == (r3.Vec{}) {
		dir = defaults.Direction.Vec()
	}
	return interaction.Gesture{
		Intent:    g.Intent,
		Position:  r3.Vec{X: g.Position[0], Y: g.Position[1], Z: g.Position[2]},
		Direction: dir,
		Radius:    g.Radius,
		Strength:  g.Strength,
	}.WithDefaults(defaults.Radius, defaults.Strength)
}

// Reply acknowledges a client message, carrying the error if it was
// rejected.
type Reply struct {
	Type  string `json:"type"`
	Of    string `json:"of"`
	Error string `json:"error,omitempty"`
}

// Status is served on / for health checks.
type Status struct {
	Step      int  `json:"step"`
	Particles int  `json:"particles"`
	Clients   int  `json:"clients"`
	Paused    bool `json:"paused"`
}
