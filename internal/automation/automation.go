package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/experiment"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/interaction"
	"github.com/san-kum/sphfluid/internal/metrics"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Config      string  `yaml:"config"`
	Steps       int     `yaml:"steps"`
	FrameEvery  int     `yaml:"frame_every"`
	Events      []Event `yaml:"events"`
}

// Event fires before step At and, for gestures, keeps firing for Repeat
// steps (default 1).
type Event struct {
	At      int           `yaml:"at"`
	Repeat  int           `yaml:"repeat"`
	Reset   bool          `yaml:"reset"`
	Gesture *GestureEvent `yaml:"gesture"`
}

type GestureEvent struct {
	Intent    interaction.Intent `yaml:"intent"`
	Position  config.Vec3        `yaml:"position"`
	Direction config.Vec3        `yaml:"direction"`
	Radius    float64            `yaml:"radius"`
	Strength  float64            `yaml:"strength"`
}

func (g *GestureEvent) gesture(defaults config.InteractionConfig) interaction.Gesture {
	dir := g.Direction
	if dir == (config.Vec3{}) {
		dir = defaults.Direction
	}
	return interaction.Gesture{
		Intent:    g.Intent,
		Position:  g.Position.Vec(),
		Direction: dir.Vec(),
		Radius:    g.Radius,
		Strength:  g.Strength,
	}.WithDefaults(defaults.Radius, defaults.Strength)
}

func (e Event) active(step int) bool {
	n := e.Repeat
	if n <= 0 {
		n = 1
	}
	return step >= e.At && step < e.At+n
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Resolve builds the run configuration: the config file if given, else the
// preset, else the defaults.
func (s *Scenario) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}
	if s.Steps > 0 {
		cfg.Run.Steps = s.Steps
	}
	if s.FrameEvery > 0 {
		cfg.Run.FrameEvery = s.FrameEvery
	}
	return cfg, nil
}

// RunScenario executes the scenario's events against a fresh simulator.
func RunScenario(ctx context.Context, scenario *Scenario, log logr.Logger) (*experiment.Result, error) {
	cfg, err := scenario.Resolve()
	if err != nil {
		return nil, err
	}
	for i, ev := range scenario.Events {
		if ev.At < 0 || ev.At >= cfg.Run.Steps {
			return nil, fmt.Errorf("event %d: step %d outside run of %d steps", i, ev.At, cfg.Run.Steps)
		}
	}

	sim, err := cfg.NewSimulator(log)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(sim, experiment.Config{Steps: cfg.Run.Steps, FrameEvery: cfg.Run.FrameEvery})
	for _, m := range metrics.Default(cfg.Fluid.ParticleMass) {
		exp.AddMetric(m)
	}
	exp.BeforeStep(func(step int, sim *fluid.Simulator) error {
		for i, ev := range scenario.Events {
			if !ev.active(step) {
				continue
			}
			if ev.Reset && step == ev.At {
				log.V(1).Info("scenario reset", "scenario", scenario.Name, "step", step)
				sim.Reset()
			}
			if ev.Gesture != nil {
				if err := ev.Gesture.gesture(cfg.Interaction).Apply(sim); err != nil {
					return fmt.Errorf("event %d: %w", i, err)
				}
			}
		}
		return nil
	})

	return exp.Run(ctx)
}
