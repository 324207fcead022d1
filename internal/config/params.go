package config

import (
	"fmt"
	"slices"
	"strings"
)

type field struct {
	get func(c *Config) float64
	set func(c *Config, v float64)
}

var tunable = map[string]field{
	"viscosity": {
		func(c *Config) float64 { return c.Fluid.Viscosity },
		func(c *Config, v float64) { c.Fluid.Viscosity = v },
	},
	"gas_constant": {
		func(c *Config) float64 { return c.Fluid.GasConstant },
		func(c *Config, v float64) { c.Fluid.GasConstant = v },
	},
	"rest_density": {
		func(c *Config) float64 { return c.Fluid.RestDensity },
		func(c *Config, v float64) { c.Fluid.RestDensity = v },
	},
	"particle_mass": {
		func(c *Config) float64 { return c.Fluid.ParticleMass },
		func(c *Config, v float64) { c.Fluid.ParticleMass = v },
	},
	"smoothing_radius": {
		func(c *Config) float64 { return c.Fluid.SmoothingRadius },
		func(c *Config, v float64) { c.Fluid.SmoothingRadius = v },
	},
	"time_step": {
		func(c *Config) float64 { return c.Fluid.TimeStep },
		func(c *Config, v float64) { c.Fluid.TimeStep = v },
	},
	"drag": {
		func(c *Config) float64 { return c.Fluid.Drag },
		func(c *Config, v float64) { c.Fluid.Drag = v },
	},
	"max_speed": {
		func(c *Config) float64 { return c.Fluid.MaxSpeed },
		func(c *Config, v float64) { c.Fluid.MaxSpeed = v },
	},
	"gravity": {
		func(c *Config) float64 { return c.Fluid.Gravity.Y },
		func(c *Config, v float64) { c.Fluid.Gravity.Y = v },
	},
	"boundary_damping": {
		func(c *Config) float64 { return c.Boundary.Damping },
		func(c *Config, v float64) { c.Boundary.Damping = v },
	},
}

func lookup(name string) (field, error) {
	f, ok := tunable[strings.ToLower(name)]
	if !ok {
		return field{}, fmt.Errorf("config: unknown parameter %q (tunable: %s)", name, strings.Join(TunableParams(), ", "))
	}
	return f, nil
}

// SetParam sets one scalar parameter by its configuration key. "gravity"
// sets the vertical component.
func (c *Config) SetParam(name string, v float64) error {
	f, err := lookup(name)
	if err != nil {
		return err
	}
	f.set(c, v)
	return nil
}

// Param reads a parameter accepted by SetParam.
func (c *Config) Param(name string) (float64, error) {
	f, err := lookup(name)
	if err != nil {
		return 0, err
	}
	return f.get(c), nil
}

// TunableParams lists the keys accepted by SetParam.
func TunableParams() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
