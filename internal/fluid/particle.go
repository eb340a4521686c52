package fluid

import "math"

// Particle is one fluid element. The World owns every particle for the
// lifetime of a run; renderers work from snapshot copies.
type Particle struct {
	// ID is assigned at initialization, 0-based and contiguous, and is
	// never reused within a run.
	ID int

	// X, Y in domain coordinates.
	X, Y float64

	// VX, VY in domain units per tick.
	VX, VY float64

	// Density is the kernel-weighted neighbor sum, floored at
	// DensityFloor so it is always a usable denominator.
	Density float64

	// Pressure follows the linear equation of state and may be negative
	// (rarefaction).
	Pressure float64

	// Temperature is copied from the configuration at creation and never
	// evolved by the core. Renderers map it to color.
	Temperature float64
}

// Speed returns the velocity magnitude.
func (p Particle) Speed() float64 {
	return math.Sqrt(p.VX*p.VX + p.VY*p.VY)
}

// Pointer is the most recent pointer state, read once per tick by the
// force pass. Repel flips the interaction force outward; the default is
// attraction.
type Pointer struct {
	X, Y   float64
	Active bool
	Repel  bool
}
