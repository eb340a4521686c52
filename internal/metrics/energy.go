package metrics

import (
	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// KineticEnergy samples the collection's total kinetic energy each tick,
// with unit particle mass. Under damping alone it decays by a fixed
// factor per tick, which makes it the first thing to plot when a run
// looks wrong.
type KineticEnergy struct {
	last float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{}
}

func (k *KineticEnergy) Name() string { return "energy" }

func (k *KineticEnergy) Observe(ps []fluid.Particle, step int) {
	total := 0.0
	for _, p := range ps {
		total += 0.5 * (p.VX*p.VX + p.VY*p.VY)
	}
	k.last = total
}

func (k *KineticEnergy) Value() float64 { return k.last }

func (k *KineticEnergy) Reset() { k.last = 0 }

// Default is the standard metric set for headless runs.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewMeanDensity(),
		NewDensitySpread(),
		NewMaxSpeed(),
	}
}
