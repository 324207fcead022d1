package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Fluid.Particles != DefaultParticles {
		t.Errorf("expected %d particles, got %d", DefaultParticles, cfg.Fluid.Particles)
	}
	if cfg.FluidParams() != fluid.DefaultParams() {
		t.Errorf("default params drifted from fluid.DefaultParams: %+v", cfg.FluidParams())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
fluid:
  num_particles: 64
  rest_density: 900
  gravity: [0, -3.7, 0]
boundary:
  min: "-2 -1 -2"
performance:
  neighbor_search: brute
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fluid.Particles != 64 || cfg.Fluid.RestDensity != 900 {
		t.Errorf("fluid section not applied: %+v", cfg.Fluid)
	}
	if cfg.Fluid.Gravity != (Vec3{Y: -3.7}) {
		t.Errorf("gravity = %v", cfg.Fluid.Gravity)
	}
	if cfg.Boundary.Min != (Vec3{X: -2, Y: -1, Z: -2}) {
		t.Errorf("boundary min = %v", cfg.Boundary.Min)
	}
	if cfg.Fluid.GasConstant != DefaultConfig().Fluid.GasConstant {
		t.Error("unset keys should keep their defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, "run.ini", `
[fluid]
num-particles = 27
viscosity = 1.5
gravity = 0, -1.6, 0

[layout]
kind = block
min = -1 -1 -1
max = 0 0 0
seed = 42

[run]
steps = 120
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fluid.Particles != 27 || cfg.Fluid.Viscosity != 1.5 {
		t.Errorf("fluid section not applied: %+v", cfg.Fluid)
	}
	if cfg.Fluid.Gravity != (Vec3{Y: -1.6}) {
		t.Errorf("gravity = %v", cfg.Fluid.Gravity)
	}
	if cfg.Layout.Kind != LayoutBlock || cfg.Layout.Seed != 42 {
		t.Errorf("layout section not applied: %+v", cfg.Layout)
	}
	if _, ok := cfg.ParticleLayout().(particles.BlockLayout); !ok {
		t.Errorf("expected block layout, got %T", cfg.ParticleLayout())
	}
	if cfg.Run.Steps != 120 {
		t.Errorf("steps = %d", cfg.Run.Steps)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeFile(t, "run.toml", "")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "fluid:\n  gravity: [1, 2]\n")); err == nil {
		t.Error("expected error for short vector")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("dam_break")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestVec3UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    Vec3
		wantErr bool
	}{
		{"1 2 3", Vec3{X: 1, Y: 2, Z: 3}, false},
		{"1,2,3", Vec3{X: 1, Y: 2, Z: 3}, false},
		{" -0.5 ,\t0, 9.8 ", Vec3{X: -0.5, Z: 9.8}, false},
		{"1 2", Vec3{}, true},
		{"1 2 x", Vec3{}, true},
	}
	for _, tt := range tests {
		var v Vec3
		err := v.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && v != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, v, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no particles", func(c *Config) { c.Fluid.Particles = 0 }, "num_particles"},
		{"bad damping", func(c *Config) { c.Boundary.Damping = 2 }, "boundary_damping"},
		{"bad layout", func(c *Config) { c.Layout.Kind = "spiral" }, "layout.kind"},
		{"inverted block", func(c *Config) {
			c.Layout.Kind = LayoutBlock
			c.Layout.Min = Vec3{X: 1}
		}, "layout.min"},
		{"empty block", func(c *Config) { c.Layout.Kind = LayoutBlock }, "layout.min"},
		{"flat block", func(c *Config) {
			c.Layout.Kind = LayoutBlock
			c.Layout.Min = Vec3{X: -0.5, Y: -0.5, Z: 0.2}
			c.Layout.Max = Vec3{X: 0.5, Y: 0.5, Z: 0.2}
		}, "layout.min"},
		{"bad search", func(c *Config) { c.Performance.NeighborSearch = "kdtree" }, "neighbor_search"},
		{"bad radius", func(c *Config) { c.Interaction.Radius = 0 }, "interaction.radius"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		var pe *dynamo.ParamError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParamError, got %v", tt.name, err)
			continue
		}
		if pe.Name != tt.field {
			t.Errorf("%s: field = %q, want %q", tt.name, pe.Name, tt.field)
		}
	}
}

func TestNewSimulator(t *testing.T) {
	cfg := GetPreset("zero_g")
	cfg.Fluid.Particles = 27
	sim, err := cfg.NewSimulator(logr.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if sim.Len() != 27 {
		t.Errorf("expected 27 particles, got %d", sim.Len())
	}
	if err := sim.Step(cfg.Fluid.TimeStep); err != nil {
		t.Fatal(err)
	}

	cfg.Fluid.SmoothingRadius = -1
	if _, err := cfg.NewSimulator(logr.Discard()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dam_break")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Layout.Kind != LayoutBlock {
		t.Errorf("expected block layout, got %s", cfg.Layout.Kind)
	}

	cfg.Fluid.Particles = 1
	if GetPreset("dam_break").Fluid.Particles == 1 {
		t.Error("GetPreset should return a copy")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	if !slices.IsSorted(names) {
		t.Errorf("presets not sorted: %v", names)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetParam("viscosity", 3); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetParam("Gravity", -1.6); err != nil {
		t.Fatal(err)
	}
	if cfg.Fluid.Viscosity != 3 || cfg.Fluid.Gravity.Y != -1.6 {
		t.Errorf("params not applied: %+v", cfg.Fluid)
	}
	if err := cfg.SetParam("warp_factor", 9); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if !slices.IsSorted(TunableParams()) {
		t.Error("tunable params not sorted")
	}
}

func TestParam(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range TunableParams() {
		if _, err := cfg.Param(name); err != nil {
			t.Errorf("Param(%q): %v", name, err)
		}
	}
	if err := cfg.SetParam("boundary_damping", 0.7); err != nil {
		t.Fatal(err)
	}
	if v, _ := cfg.Param("boundary_damping"); v != 0.7 {
		t.Errorf("boundary_damping = %v, want 0.7", v)
	}
	if _, err := cfg.Param("nope"); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
