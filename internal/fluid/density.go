package fluid

import "math"

// updateDensity runs the neighbor field pass: kernel-weighted density for
// every particle, then pressure from the linear equation of state. Results
// land in a staging buffer and are written back only once the whole pass
// is done, so the force pass never reads a half-updated field.
func (w *World) updateDensity() {
	ps := w.particles
	h := w.h

	for i := range ps {
		sum := 0.0
		for j := range ps {
			dx := ps[i].X - ps[j].X
			dy := ps[i].Y - ps[j].Y
			d := math.Sqrt(dx*dx + dy*dy)
			// support is the open interval [0, h); the self pair lands
			// at d == 0 and contributes exactly 1
			if d >= h {
				continue
			}
			k := 1 - d/h
			sum += k * k
		}
		if sum < DensityFloor {
			sum = DensityFloor
		}
		w.rho[i] = sum
	}

	for i := range ps {
		ps[i].Density = w.rho[i]
		ps[i].Pressure = w.params.Stiffness * (w.rho[i] - w.params.RestDensity)
	}
}
