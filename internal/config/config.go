package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles = 500
	DefaultSteps     = 600
	DefaultRate      = 60.0
	DefaultRadius    = 0.15
	DefaultStrength  = 50.0

	LayoutGrid  = "grid"
	LayoutBlock = "block"

	SearchGrid  = "grid"
	SearchBrute = "brute"
)

// Config is a complete run description. Every field is reachable from YAML
// (snake_case keys) and from INI files (dashed keys under [section]).
type Config struct {
	Fluid       FluidConfig       `yaml:"fluid" gcfg:"fluid"`
	Boundary    BoundaryConfig    `yaml:"boundary" gcfg:"boundary"`
	Layout      LayoutConfig      `yaml:"layout" gcfg:"layout"`
	Performance PerformanceConfig `yaml:"performance" gcfg:"performance"`
	Interaction InteractionConfig `yaml:"interaction" gcfg:"interaction"`
	Run         RunConfig         `yaml:"run" gcfg:"run"`
}

type FluidConfig struct {
	Particles       int     `yaml:"num_particles" gcfg:"num-particles"`
	ParticleMass    float64 `yaml:"particle_mass" gcfg:"particle-mass"`
	RestDensity     float64 `yaml:"rest_density" gcfg:"rest-density"`
	GasConstant     float64 `yaml:"gas_constant" gcfg:"gas-constant"`
	Viscosity       float64 `yaml:"viscosity" gcfg:"viscosity"`
	SmoothingRadius float64 `yaml:"smoothing_radius" gcfg:"smoothing-radius"`
	TimeStep        float64 `yaml:"time_step" gcfg:"time-step"`
	Gravity         Vec3    `yaml:"gravity" gcfg:"gravity"`
	Drag            float64 `yaml:"drag" gcfg:"drag"`
	MaxSpeed        float64 `yaml:"max_speed" gcfg:"max-speed"`
}

type BoundaryConfig struct {
	Min     Vec3    `yaml:"min" gcfg:"min"`
	Max     Vec3    `yaml:"max" gcfg:"max"`
	Damping float64 `yaml:"damping" gcfg:"damping"`
}

// LayoutConfig selects the starting configuration. "grid" builds a cube
// around Center; "block" scatters particles between Min and Max.
type LayoutConfig struct {
	Kind    string  `yaml:"kind" gcfg:"kind"`
	Spacing float64 `yaml:"spacing" gcfg:"spacing"`
	Center  Vec3    `yaml:"center" gcfg:"center"`
	Min     Vec3    `yaml:"min" gcfg:"min"`
	Max     Vec3    `yaml:"max" gcfg:"max"`
	Seed    uint64  `yaml:"seed" gcfg:"seed"`
}

type PerformanceConfig struct {
	Workers        int     `yaml:"workers" gcfg:"workers"`
	NeighborSearch string  `yaml:"neighbor_search" gcfg:"neighbor-search"`
	CellSize       float64 `yaml:"cell_size" gcfg:"cell-size"`
	MinChunk       int     `yaml:"min_chunk" gcfg:"min-chunk"`
}

// InteractionConfig holds the defaults used when a gesture leaves radius or
// strength unset.
type InteractionConfig struct {
	Radius    float64 `yaml:"radius" gcfg:"radius"`
	Strength  float64 `yaml:"strength" gcfg:"strength"`
	Direction Vec3    `yaml:"direction" gcfg:"direction"`
}

type RunConfig struct {
	Steps      int     `yaml:"steps" gcfg:"steps"`
	Rate       float64 `yaml:"rate" gcfg:"rate"`
	FrameEvery int     `yaml:"frame_every" gcfg:"frame-every"`
}

func DefaultConfig() *Config {
	p := fluid.DefaultParams()
	return &Config{
		Fluid: FluidConfig{
			Particles:       DefaultParticles,
			ParticleMass:    p.ParticleMass,
			RestDensity:     p.RestDensity,
			GasConstant:     p.GasConstant,
			Viscosity:       p.Viscosity,
			SmoothingRadius: p.SmoothingRadius,
			TimeStep:        p.TimeStep,
			Gravity:         Vec3(p.Gravity),
			Drag:            p.Drag,
		},
		Boundary: BoundaryConfig{
			Min:     Vec3(p.Bounds.Min),
			Max:     Vec3(p.Bounds.Max),
			Damping: p.BoundaryDamping,
		},
		Layout: LayoutConfig{
			Kind:   LayoutGrid,
			Center: Vec3{Y: 0.5},
		},
		Performance: PerformanceConfig{
			NeighborSearch: SearchGrid,
		},
		Interaction: InteractionConfig{
			Radius:    DefaultRadius,
			Strength:  DefaultStrength,
			Direction: Vec3{Z: 1},
		},
		Run: RunConfig{
			Steps:      DefaultSteps,
			Rate:       DefaultRate,
			FrameEvery: 10,
		},
	}
}

// Load reads a YAML (.yaml, .yml) or INI (.ini, .gcfg) file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".ini", ".gcfg":
		if err := gcfg.ReadFileInto(cfg, path); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FluidParams converts the physical sections into simulator parameters.
func (c *Config) FluidParams() fluid.Params {
	return fluid.Params{
		SmoothingRadius: c.Fluid.SmoothingRadius,
		RestDensity:     c.Fluid.RestDensity,
		GasConstant:     c.Fluid.GasConstant,
		Viscosity:       c.Fluid.Viscosity,
		Gravity:         c.Fluid.Gravity.Vec(),
		ParticleMass:    c.Fluid.ParticleMass,
		TimeStep:        c.Fluid.TimeStep,
		BoundaryDamping: c.Boundary.Damping,
		Bounds:          r3.Box{Min: c.Boundary.Min.Vec(), Max: c.Boundary.Max.Vec()},
		Drag:            c.Fluid.Drag,
		MaxSpeed:        c.Fluid.MaxSpeed,
		CellSize:        c.Performance.CellSize,
	}
}

// Validate checks the configuration as a whole, including the derived
// simulator parameters.
func (c *Config) Validate() error {
	if c.Fluid.Particles <= 0 {
		return dynamo.Invalid("num_particles", c.Fluid.Particles, "must be positive")
	}
	if err := c.FluidParams().Validate(); err != nil {
		return err
	}
	switch c.Layout.Kind {
	case LayoutGrid:
		if c.Layout.Spacing < 0 {
			return dynamo.Invalid("layout.spacing", c.Layout.Spacing, "must not be negative")
		}
	case LayoutBlock:
		lo, hi := c.Layout.Min, c.Layout.Max
		if lo.X >= hi.X || lo.Y >= hi.Y || lo.Z >= hi.Z {
			return dynamo.Invalid("layout.min", lo, "must be below layout.max on every axis")
		}
	default:
		return dynamo.Invalid("layout.kind", c.Layout.Kind, "must be grid or block")
	}
	switch c.Performance.NeighborSearch {
	case SearchGrid, SearchBrute:
	default:
		return dynamo.Invalid("neighbor_search", c.Performance.NeighborSearch, "must be grid or brute")
	}
	if c.Interaction.Radius <= 0 {
		return dynamo.Invalid("interaction.radius", c.Interaction.Radius, "must be positive")
	}
	if c.Run.Rate <= 0 {
		return dynamo.Invalid("run.rate", c.Run.Rate, "must be positive")
	}
	return nil
}

// ParticleLayout returns the starting layout described by the layout section.
func (c *Config) ParticleLayout() particles.Layout {
	if c.Layout.Kind == LayoutBlock {
		return particles.BlockLayout{
			Box:  r3.Box{Min: c.Layout.Min.Vec(), Max: c.Layout.Max.Vec()},
			Seed: c.Layout.Seed,
		}
	}
	spacing := c.Layout.Spacing
	if spacing == 0 {
		spacing = 0.8 * c.Fluid.SmoothingRadius
	}
	return particles.GridLayout{Spacing: spacing, Center: c.Layout.Center.Vec()}
}

// Options returns the simulator options for this configuration.
func (c *Config) Options(log logr.Logger) []fluid.Option {
	opts := []fluid.Option{
		fluid.WithLogger(log),
		fluid.WithWorkers(c.Performance.Workers),
		fluid.WithLayout(c.ParticleLayout()),
	}
	if c.Performance.NeighborSearch == SearchBrute {
		opts = append(opts, fluid.WithSearcher(spatial.NewBruteForce()))
	}
	if c.Performance.MinChunk > 0 {
		opts = append(opts, fluid.WithMinChunk(c.Performance.MinChunk))
	}
	return opts
}

// NewSimulator validates c and builds the simulator it describes.
func (c *Config) NewSimulator(log logr.Logger) (*fluid.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return fluid.New(c.Fluid.Particles, c.FluidParams(), c.Options(log)...)
}
