package interaction_test

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/interaction"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ interaction.Target = (*fluid.Simulator)(nil)

type call struct {
	radial   bool
	pos      r3.Vec
	force    r3.Vec
	strength float64
	radius   float64
}

type recorder struct{ calls []call }

func (r *recorder) AddExternalForce(pos, force r3.Vec, radius float64) error {
	r.calls = append(r.calls, call{pos: pos, force: force, radius: radius})
	return nil
}

func (r *recorder) AddRadialForce(pos r3.Vec, strength, radius float64) error {
	r.calls = append(r.calls, call{radial: true, pos: pos, strength: strength, radius: radius})
	return nil
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in      string
		want    interaction.Intent
		wantErr bool
	}{
		{"push", interaction.Push, false},
		{" Repel ", interaction.Repel, false},
		{"ATTRACT", interaction.Attract, false},
		{"point", interaction.Point, false},
		{"none", interaction.None, false},
		{"wave", interaction.None, true},
	}
	for _, tt := range tests {
		got, err := interaction.ParseIntent(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
	if s := interaction.Intent(42).String(); s != "Intent(42)" {
		t.Errorf("unexpected string %q", s)
	}
}

func TestApplyDirectional(t *testing.T) {
	var r recorder
	g := interaction.Gesture{
		Intent:    interaction.Push,
		Position:  r3.Vec{Y: 0.5},
		Direction: r3.Vec{X: 3},
		Radius:    0.2,
		Strength:  10,
	}
	if err := g.Apply(&r); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 1 || r.calls[0].radial {
		t.Fatalf("unexpected calls: %+v", r.calls)
	}
	c := r.calls[0]
	if c.force != (r3.Vec{X: 20}) || c.radius != 0.2 || c.pos != g.Position {
		t.Errorf("unexpected call: %+v", c)
	}
}

func TestApplyDefaultDirection(t *testing.T) {
	var r recorder
	g := interaction.Gesture{Intent: interaction.Point, Direction: r3.Vec{X: 0.001}, Radius: 1, Strength: 4}
	if err := g.Apply(&r); err != nil {
		t.Fatal(err)
	}
	if got := r.calls[0].force; got != (r3.Vec{Z: 4}) {
		t.Errorf("force = %v, want +z", got)
	}
}

func TestApplyRadial(t *testing.T) {
	tests := []struct {
		intent interaction.Intent
		want   float64
	}{
		{interaction.Repel, 15},
		{interaction.Attract, -5},
	}
	for _, tt := range tests {
		var r recorder
		g := interaction.Gesture{Intent: tt.intent, Radius: 0.3, Strength: 10}
		if err := g.Apply(&r); err != nil {
			t.Fatal(err)
		}
		if len(r.calls) != 1 || !r.calls[0].radial || r.calls[0].strength != tt.want {
			t.Errorf("%v: unexpected calls %+v", tt.intent, r.calls)
		}
	}
}

func TestApplyNone(t *testing.T) {
	var r recorder
	if err := (interaction.Gesture{}).Apply(&r); err != nil || len(r.calls) != 0 {
		t.Errorf("none should be a no-op: %v %+v", err, r.calls)
	}
}

func TestWithDefaults(t *testing.T) {
	g := interaction.Gesture{Intent: interaction.Repel, Radius: 0.5}.WithDefaults(0.15, 50)
	if g.Radius != 0.5 || g.Strength != 50 {
		t.Errorf("unexpected gesture %+v", g)
	}
}

func TestApplyToSimulator(t *testing.T) {
	p := fluid.DefaultParams()
	p.Gravity = r3.Vec{}
	sim, err := fluid.New(2, p, fluid.WithLayout(particles.PointsLayout{{X: 0.1}, {X: -0.1}}))
	if err != nil {
		t.Fatal(err)
	}

	repel := interaction.Gesture{Intent: interaction.Repel, Radius: 0.5, Strength: 10}
	if err := repel.Apply(sim); err != nil {
		t.Fatal(err)
	}
	if sim.Pending(0).X <= 0 || sim.Pending(1).X >= 0 {
		t.Errorf("repel should push outward: %v %v", sim.Pending(0), sim.Pending(1))
	}
	if math.Abs(sim.Pending(0).X+sim.Pending(1).X) > 1e-12 {
		t.Error("repel should be symmetric")
	}

	bad := interaction.Gesture{Intent: interaction.Push, Strength: 1}
	if err := bad.Apply(sim); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("zero radius should be rejected, got %v", err)
	}
}

func TestButtonsIntent(t *testing.T) {
	tests := []struct {
		b    interaction.Buttons
		want interaction.Intent
	}{
		{interaction.Buttons{}, interaction.None},
		{interaction.Buttons{Primary: true}, interaction.Repel},
		{interaction.Buttons{Secondary: true}, interaction.Attract},
		{interaction.Buttons{Primary: true, Modifier: true}, interaction.Push},
		{interaction.Buttons{Primary: true, Secondary: true}, interaction.Repel},
		{interaction.Buttons{Modifier: true}, interaction.None},
	}
	for _, tt := range tests {
		if got := tt.b.Intent(); got != tt.want {
			t.Errorf("%+v.Intent() = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestPlaneHit(t *testing.T) {
	hit, ok := interaction.PlaneHit(r3.Vec{X: 1, Y: 2, Z: 10}, r3.Vec{X: 0.5, Z: -1}, 0)
	if !ok || hit != (r3.Vec{X: 6, Y: 2, Z: 0}) {
		t.Errorf("hit = %v, %v", hit, ok)
	}
	if _, ok := interaction.PlaneHit(r3.Vec{Z: 10}, r3.Vec{X: 1}, 0); ok {
		t.Error("parallel ray should miss")
	}
	if _, ok := interaction.PlaneHit(r3.Vec{Z: 10}, r3.Vec{Z: 1}, 0); ok {
		t.Error("plane behind the origin should miss")
	}
}
