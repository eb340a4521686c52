package fluid

// integrate advances positions by one unit step and resolves wall
// collisions: the offending coordinate is clamped to the margin and the
// normal velocity scaled by Restitution.
func (w *World) integrate() {
	ps := w.particles
	maxX := w.width - Margin
	maxY := w.height - Margin

	for i := range ps {
		nx := ps[i].X + ps[i].VX
		ny := ps[i].Y + ps[i].VY
		if !finite(nx) || !finite(ny) {
			w.anomalies++
			continue
		}
		ps[i].X, ps[i].Y = nx, ny

		if ps[i].X < Margin {
			ps[i].X = Margin
			ps[i].VX *= Restitution
		} else if ps[i].X > maxX {
			ps[i].X = maxX
			ps[i].VX *= Restitution
		}
		if ps[i].Y < Margin {
			ps[i].Y = Margin
			ps[i].VY *= Restitution
		} else if ps[i].Y > maxY {
			ps[i].Y = maxY
			ps[i].VY *= Restitution
		}
	}
}
