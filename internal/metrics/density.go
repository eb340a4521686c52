package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// MeanDensity samples the mean kernel density across the collection. In
// a settled run it hovers near the configured rest density.
type MeanDensity struct {
	last    float64
	scratch []float64
}

func NewMeanDensity() *MeanDensity {
	return &MeanDensity{}
}

func (m *MeanDensity) Name() string { return "mean_density" }

func (m *MeanDensity) Observe(ps []fluid.Particle, step int) {
	m.scratch = m.scratch[:0]
	for _, p := range ps {
		m.scratch = append(m.scratch, p.Density)
	}
	m.last = stat.Mean(m.scratch, nil)
}

func (m *MeanDensity) Value() float64 { return m.last }

func (m *MeanDensity) Reset() { m.last = 0 }

// DensitySpread samples the standard deviation of particle densities,
// a cheap proxy for how clumped the fluid is.
type DensitySpread struct {
	last    float64
	scratch []float64
}

func NewDensitySpread() *DensitySpread {
	return &DensitySpread{}
}

func (d *DensitySpread) Name() string { return "density_spread" }

func (d *DensitySpread) Observe(ps []fluid.Particle, step int) {
	d.scratch = d.scratch[:0]
	for _, p := range ps {
		d.scratch = append(d.scratch, p.Density)
	}
	if len(d.scratch) < 2 {
		d.last = 0
		return
	}
	d.last = stat.StdDev(d.scratch, nil)
}

func (d *DensitySpread) Value() float64 { return d.last }

func (d *DensitySpread) Reset() { d.last = 0 }
