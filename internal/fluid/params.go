package fluid

import (
	"fmt"
	"math"
)

// Valid ranges for every tunable parameter. Values outside these are
// clamped or rejected before they reach the kernel math.
const (
	MinRestDensity = 0.1
	MaxRestDensity = 3.0

	MinViscosity = 0.001
	MaxViscosity = 0.1

	MinStiffness = 0.1
	MaxStiffness = 5.0

	MinGravity = 0.0
	MaxGravity = 1.0

	MinTemperature = 0.0
	MaxTemperature = 100.0

	MinParticleCount = 50
	MaxParticleCount = 500
	ParticleStep     = 10
)

// Params are the tunable scalars read by every tick. Changing any field
// resets the run (see World.SetParams).
type Params struct {
	RestDensity        float64 `yaml:"rest_density"`
	Viscosity          float64 `yaml:"viscosity"`
	Stiffness          float64 `yaml:"stiffness"`
	Gravity            float64 `yaml:"gravity"`
	AmbientTemperature float64 `yaml:"ambient_temperature"`
	ParticleCount      int     `yaml:"particle_count"`
}

// DefaultParams returns a mid-range, visually settled configuration.
func DefaultParams() Params {
	return Params{
		RestDensity:        1.5,
		Viscosity:          0.02,
		Stiffness:          1.2,
		Gravity:            0.15,
		AmbientTemperature: 20,
		ParticleCount:      200,
	}
}

// Clamp normalizes every field in place: scalars to their ranges, the
// temperature to a whole degree, the particle count to the nearest step
// inside its range.
func (p *Params) Clamp() {
	p.RestDensity = clamp(p.RestDensity, MinRestDensity, MaxRestDensity)
	p.Viscosity = clamp(p.Viscosity, MinViscosity, MaxViscosity)
	p.Stiffness = clamp(p.Stiffness, MinStiffness, MaxStiffness)
	p.Gravity = clamp(p.Gravity, MinGravity, MaxGravity)
	p.AmbientTemperature = math.Round(clamp(p.AmbientTemperature, MinTemperature, MaxTemperature))
	p.ParticleCount = clampCount(p.ParticleCount)
}

// Validate rejects any out-of-range field. Used for authored files, where
// silently fixing a typo would hide it; interactive inputs go through
// Clamp instead.
func (p Params) Validate() error {
	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"rest_density", p.RestDensity, MinRestDensity, MaxRestDensity},
		{"viscosity", p.Viscosity, MinViscosity, MaxViscosity},
		{"stiffness", p.Stiffness, MinStiffness, MaxStiffness},
		{"gravity", p.Gravity, MinGravity, MaxGravity},
		{"ambient_temperature", p.AmbientTemperature, MinTemperature, MaxTemperature},
	}
	for _, c := range checks {
		if c.v < c.lo || c.v > c.hi {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrParamBounds, c.name, c.v, c.lo, c.hi)
		}
	}
	if p.AmbientTemperature != math.Trunc(p.AmbientTemperature) {
		return fmt.Errorf("%w: ambient_temperature=%v not a whole degree", ErrParamBounds, p.AmbientTemperature)
	}
	if p.ParticleCount < MinParticleCount || p.ParticleCount > MaxParticleCount {
		return fmt.Errorf("%w: particle_count=%d outside [%d, %d]", ErrParamBounds, p.ParticleCount, MinParticleCount, MaxParticleCount)
	}
	if p.ParticleCount%ParticleStep != 0 {
		return fmt.Errorf("%w: particle_count=%d not a multiple of %d", ErrParamBounds, p.ParticleCount, ParticleStep)
	}
	return nil
}

// Map returns the parameters keyed by name, for display and tuning UIs.
func (p Params) Map() map[string]float64 {
	return map[string]float64{
		"rest_density":        p.RestDensity,
		"viscosity":           p.Viscosity,
		"stiffness":           p.Stiffness,
		"gravity":             p.Gravity,
		"ambient_temperature": p.AmbientTemperature,
		"particle_count":      float64(p.ParticleCount),
	}
}

// Set assigns one named parameter and clamps the result.
func (p *Params) Set(name string, v float64) error {
	switch name {
	case "rest_density":
		p.RestDensity = v
	case "viscosity":
		p.Viscosity = v
	case "stiffness":
		p.Stiffness = v
	case "gravity":
		p.Gravity = v
	case "ambient_temperature":
		p.AmbientTemperature = v
	case "particle_count":
		p.ParticleCount = int(math.Round(v))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	p.Clamp()
	return nil
}

// ParamSpec describes one tunable for slider and key-tuning UIs.
type ParamSpec struct {
	Name  string
	Label string
	Min   float64
	Max   float64
	Step  float64
}

// Specs lists every tunable in display order.
func Specs() []ParamSpec {
	return []ParamSpec{
		{"rest_density", "Rest density", MinRestDensity, MaxRestDensity, 0.1},
		{"viscosity", "Viscosity", MinViscosity, MaxViscosity, 0.001},
		{"stiffness", "Stiffness", MinStiffness, MaxStiffness, 0.1},
		{"gravity", "Gravity", MinGravity, MaxGravity, 0.05},
		{"ambient_temperature", "Temperature", MinTemperature, MaxTemperature, 1},
		{"particle_count", "Particles", MinParticleCount, MaxParticleCount, ParticleStep},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampCount(n int) int {
	n = int(math.Round(float64(n)/ParticleStep)) * ParticleStep
	if n < MinParticleCount {
		return MinParticleCount
	}
	if n > MaxParticleCount {
		return MaxParticleCount
	}
	return n
}
