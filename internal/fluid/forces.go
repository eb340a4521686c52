package fluid

import "math"

// accumulateForces sums pairwise pressure and viscosity forces, gravity
// and the pointer interaction into scratch buffers, then applies them as
// direct velocity increments followed by damping. Accumulation reads only
// pass-entry state, so the order particles are visited in cannot leak into
// the result.
func (w *World) accumulateForces(ptr Pointer) {
	ps := w.particles
	h := w.h

	for i := range ps {
		fx, fy := 0.0, 0.0
		for j := range ps {
			if j == i {
				continue
			}
			dx := ps[i].X - ps[j].X
			dy := ps[i].Y - ps[j].Y
			d := math.Sqrt(dx*dx + dy*dy)
			// coincident pairs have no direction; skipped, not solved
			if d <= 0 || d >= h {
				continue
			}
			wt := 1 - d/h

			// shared pressure over the neighbor's own density, along the
			// unit vector from j to i; anti-symmetric in direction only
			fp := wt * (ps[i].Pressure + ps[j].Pressure) / (2 * ps[j].Density)
			fx += fp * dx / d
			fy += fp * dy / d

			// velocity relaxation toward the neighbor
			fx += w.params.Viscosity * wt * (ps[j].VX - ps[i].VX)
			fy += w.params.Viscosity * wt * (ps[j].VY - ps[i].VY)
		}

		fy += w.params.Gravity

		if ptr.Active {
			dx := ptr.X - ps[i].X
			dy := ptr.Y - ps[i].Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d > 0 && d < w.reach {
				f := 0.5 * (w.reach - d) / w.reach
				if ptr.Repel {
					f = -f
				}
				fx += f * dx / d
				fy += f * dy / d
			}
		}

		w.fx[i], w.fy[i] = fx, fy
	}

	for i := range ps {
		fx, fy := w.fx[i], w.fy[i]
		if !finite(fx) || !finite(fy) {
			w.anomalies++
			fx, fy = 0, 0
		}
		vx := (ps[i].VX + fx) * Damping
		vy := (ps[i].VY + fy) * Damping
		if !finite(vx) || !finite(vy) {
			w.anomalies++
			continue
		}
		ps[i].VX, ps[i].VY = vx, vy
	}
}
