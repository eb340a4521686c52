package metrics

import (
	"math"
	"testing"

	"github.com/pkoval/fluidlab/internal/fluid"
)

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	ps := []fluid.Particle{
		{VX: 3, VY: 4},  // speed 5, energy 12.5
		{VX: -1, VY: 0}, // energy 0.5
	}

	m.Observe(ps, 1)
	if math.Abs(m.Value()-13.0) > 1e-12 {
		t.Errorf("energy %.6f, want 13.0", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset kept value %.6f", m.Value())
	}
}

func TestKineticEnergyAtRest(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe([]fluid.Particle{{X: 1}, {X: 2}}, 1)
	if m.Value() != 0 {
		t.Errorf("resting collection has energy %.6f", m.Value())
	}
}

func TestMeanDensity(t *testing.T) {
	m := NewMeanDensity()
	ps := []fluid.Particle{
		{Density: 1.0},
		{Density: 2.0},
		{Density: 3.0},
	}

	m.Observe(ps, 1)
	if math.Abs(m.Value()-2.0) > 1e-12 {
		t.Errorf("mean density %.6f, want 2.0", m.Value())
	}
}

func TestDensitySpread(t *testing.T) {
	m := NewDensitySpread()

	m.Observe([]fluid.Particle{{Density: 2}, {Density: 2}, {Density: 2}}, 1)
	if m.Value() != 0 {
		t.Errorf("uniform collection has spread %.6f", m.Value())
	}

	// sample standard deviation of {1, 3} is sqrt(2)
	m.Observe([]fluid.Particle{{Density: 1}, {Density: 3}}, 2)
	if math.Abs(m.Value()-math.Sqrt2) > 1e-12 {
		t.Errorf("spread %.6f, want %.6f", m.Value(), math.Sqrt2)
	}

	m.Observe([]fluid.Particle{{Density: 5}}, 3)
	if m.Value() != 0 {
		t.Errorf("single particle has spread %.6f", m.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	ps := []fluid.Particle{
		{VX: 1, VY: 1},
		{VX: -3, VY: 4}, // speed 5
		{VX: 0, VY: 2},
	}

	m.Observe(ps, 1)
	if math.Abs(m.Value()-5.0) > 1e-12 {
		t.Errorf("max speed %.6f, want 5.0", m.Value())
	}
}

func TestDefaultSetNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 default metrics, got %d", len(seen))
	}
}
