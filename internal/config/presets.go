package config

import (
	"maps"
	"slices"
)

func preset(tweak func(c *Config)) *Config {
	c := DefaultConfig()
	tweak(c)
	return c
}

// Presets are named starting points; GetPreset hands out copies.
var Presets = map[string]*Config{
	"dam_break": preset(func(c *Config) {
		c.Fluid.Particles = 800
		c.Layout = LayoutConfig{
			Kind: LayoutBlock,
			Min:  Vec3{X: -1, Y: -1, Z: -1},
			Max:  Vec3{X: -0.4, Y: 0.2, Z: 1},
			Seed: 7,
		}
		c.Run.Steps = 900
	}),
	"droplet": preset(func(c *Config) {
		c.Fluid.Particles = 343
		c.Layout.Center = Vec3{Y: 0.6}
		c.Boundary.Damping = 0.5
	}),
	"calm": preset(func(c *Config) {
		c.Fluid.Viscosity = 2.0
		c.Fluid.Drag = 0.995
		c.Layout.Center = Vec3{Y: -0.7}
		c.Boundary.Damping = 0.1
	}),
	"zero_g": preset(func(c *Config) {
		c.Fluid.Particles = 343
		c.Fluid.Gravity = Vec3{}
		c.Layout.Center = Vec3{}
		c.Run.Steps = 300
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
