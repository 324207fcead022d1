package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestParallelFor_CoversRange(t *testing.T) {
	tests := []struct {
		name              string
		n, chunk, workers int
	}{
		{"empty", 0, 8, 4},
		{"inline", 5, 8, 4},
		{"single worker", 100, 1, 1},
		{"even split", 64, 8, 4},
		{"uneven split", 101, 7, 3},
		{"default workers", 257, 16, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			ParallelFor(tt.n, tt.chunk, tt.workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestParamError(t *testing.T) {
	err := Invalid("time_step", -0.1, "must be positive")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected errors.Is(err, ErrInvalidParameter), got %v", err)
	}

	var pe *ParamError
	if !errors.As(err, &pe) || pe.Name != "time_step" {
		t.Fatalf("expected ParamError for time_step, got %v", err)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		v    r3.Vec
		want bool
	}{
		{"zero", r3.Vec{}, true},
		{"normal", r3.Vec{X: 1, Y: -2, Z: 3}, true},
		{"nan", r3.Vec{X: math.NaN()}, false},
		{"+inf", r3.Vec{Y: math.Inf(1)}, false},
		{"-inf", r3.Vec{Z: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite(tt.v); got != tt.want {
				t.Errorf("Finite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestClampSpeed(t *testing.T) {
	v := r3.Vec{X: 3, Y: 4}

	if got := ClampSpeed(v, 0); got != v {
		t.Errorf("max=0 should disable clamping, got %v", got)
	}
	if got := ClampSpeed(v, 10); got != v {
		t.Errorf("slow vector changed: %v", got)
	}

	got := ClampSpeed(v, 1)
	if math.Abs(r3.Norm(got)-1) > 1e-12 {
		t.Errorf("expected unit speed, got %v", r3.Norm(got))
	}
}

func TestComponent(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	for axis, want := range []float64{1, 2, 3} {
		if got := Component(v, axis); got != want {
			t.Errorf("Component(%d) = %v, want %v", axis, got, want)
		}
		if got := Component(SetComponent(v, axis, 9), axis); got != 9 {
			t.Errorf("SetComponent(%d) not applied", axis)
		}
	}
}
