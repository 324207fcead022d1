package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/sphfluid/internal/fluid"
)

func sine(n int, freq, dt float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestPowerSpectrum(t *testing.T) {
	ps := PowerSpectrum(sine(100, 5, 0.01))
	if len(ps) != 51 {
		t.Fatalf("expected 51 bins, got %d", len(ps))
	}
	if ps[0] > ps[5]/10 {
		t.Errorf("mean should be removed, DC = %v", ps[0])
	}
	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != 5 {
		t.Errorf("expected peak at bin 5, got %d", peak)
	}

	if PowerSpectrum(nil) != nil {
		t.Error("empty input should give nil")
	}
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		n    int
		dt   float64
	}{
		{2, 500, 0.016},
		{0.5, 640, 0.025},
		{7, 333, 0.01},
	}
	for _, tt := range tests {
		f, power := DominantFrequency(sine(tt.n, tt.freq, tt.dt), tt.dt)
		resolution := 1 / (float64(tt.n) * tt.dt)
		if math.Abs(f-tt.freq) > resolution {
			t.Errorf("freq %v: got %v (resolution %v)", tt.freq, f, resolution)
		}
		if power <= 0 {
			t.Errorf("freq %v: non-positive power %v", tt.freq, power)
		}
	}

	if f, _ := DominantFrequency([]float64{1, 1, 1, 1, 1}, 0.1); f != 0 {
		t.Errorf("flat series should have no dominant frequency, got %v", f)
	}
	if f, _ := DominantFrequency([]float64{1, 2}, 0.1); f != 0 {
		t.Errorf("short series should have no dominant frequency, got %v", f)
	}
}

func TestLyapunovExponent(t *testing.T) {
	newSim := func() (*fluid.Simulator, error) {
		return fluid.New(64, fluid.DefaultParams())
	}
	lambda, err := LyapunovExponent(newSim, 1e-3, 20)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(lambda) {
		t.Error("exponent is NaN")
	}

	none, err := LyapunovExponent(newSim, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if none != 0 {
		t.Errorf("zero perturbation should give 0, got %v", none)
	}
}

func TestPhasePortrait(t *testing.T) {
	p := NewPhasePortrait("x", []float64{0, 1, 2}, "y", []float64{0, 1})
	if len(p.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(p.Points))
	}

	art := PhasePortraitToASCII(p, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 12 {
		t.Errorf("expected 12 lines, got %d", len(lines))
	}
	if strings.Count(art, "•") != 2 {
		t.Errorf("expected 2 points plotted:\n%s", art)
	}
	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
