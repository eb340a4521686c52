package config

import (
	"sort"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// Presets are named parameter sets for fluids with recognizably
// different behavior.
var Presets = map[string]fluid.Params{
	"water": {
		RestDensity:        1.5,
		Viscosity:          0.02,
		Stiffness:          1.2,
		Gravity:            0.2,
		AmbientTemperature: 20,
		ParticleCount:      300,
	},
	"syrup": {
		RestDensity:        2.2,
		Viscosity:          0.09,
		Stiffness:          0.8,
		Gravity:            0.12,
		AmbientTemperature: 25,
		ParticleCount:      200,
	},
	"vapor": {
		RestDensity:        0.3,
		Viscosity:          0.004,
		Stiffness:          2.5,
		Gravity:            0.02,
		AmbientTemperature: 95,
		ParticleCount:      400,
	},
	"magma": {
		RestDensity:        2.8,
		Viscosity:          0.08,
		Stiffness:          3.5,
		Gravity:            0.25,
		AmbientTemperature: 100,
		ParticleCount:      150,
	},
	"rain": {
		RestDensity:        1.0,
		Viscosity:          0.01,
		Stiffness:          1.5,
		Gravity:            0.8,
		AmbientTemperature: 15,
		ParticleCount:      250,
	},
}

// GetPreset looks up a preset by name.
func GetPreset(name string) (fluid.Params, bool) {
	p, ok := Presets[name]
	return p, ok
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
