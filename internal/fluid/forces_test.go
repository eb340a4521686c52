package fluid

import (
	"math"
	"testing"
)

func TestPressureForceFixture(t *testing.T) {
	// d = 10, w = 1 - 10/30 = 2/3; densities and pressures set by hand
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 2}
	w := testWorld(p, []Particle{
		{ID: 0, X: 100, Y: 100, Density: 2.0, Pressure: 0.5},
		{ID: 1, X: 110, Y: 100, Density: 1.6, Pressure: 0.3},
	})

	w.accumulateForces(Pointer{})

	// on particle 0: (2/3) * (0.5+0.3) / (2*1.6) along (-1, 0), damped
	want0 := -(2.0 / 3.0) * 0.8 / 3.2 * Damping
	// on particle 1: (2/3) * (0.5+0.3) / (2*2.0) along (+1, 0), damped
	want1 := (2.0 / 3.0) * 0.8 / 4.0 * Damping

	ps := w.Particles()
	if math.Abs(ps[0].VX-want0) > 1e-12 {
		t.Errorf("particle 0 vx %.12f, want %.12f", ps[0].VX, want0)
	}
	if math.Abs(ps[1].VX-want1) > 1e-12 {
		t.Errorf("particle 1 vx %.12f, want %.12f", ps[1].VX, want1)
	}
	if ps[0].VY != 0 || ps[1].VY != 0 {
		t.Errorf("axial fixture leaked into vy: %.12f, %.12f", ps[0].VY, ps[1].VY)
	}

	// magnitudes differ because each side divides by its neighbor's
	// density; only the directions oppose
	if math.Abs(ps[0].VX) == math.Abs(ps[1].VX) {
		t.Error("expected asymmetric magnitudes for unequal densities")
	}
	if math.Signbit(ps[0].VX) == math.Signbit(ps[1].VX) {
		t.Error("expected opposing directions")
	}
}

func TestViscosityForceFixture(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0.05, Stiffness: 1.0, Gravity: 0, ParticleCount: 2}
	w := testWorld(p, []Particle{
		{ID: 0, X: 100, Y: 100, Density: 1, Pressure: 0},
		{ID: 1, X: 110, Y: 100, Density: 1, Pressure: 0, VX: 3, VY: -2},
	})

	w.accumulateForces(Pointer{})

	// w = 2/3: particle 0 is dragged toward its neighbor's velocity
	wantVX := 0.05 * (2.0 / 3.0) * 3 * Damping
	wantVY := 0.05 * (2.0 / 3.0) * -2 * Damping
	ps := w.Particles()
	if math.Abs(ps[0].VX-wantVX) > 1e-12 || math.Abs(ps[0].VY-wantVY) > 1e-12 {
		t.Errorf("particle 0 velocity (%.12f, %.12f), want (%.12f, %.12f)", ps[0].VX, ps[0].VY, wantVX, wantVY)
	}

	wantVX1 := (3 + 0.05*(2.0/3.0)*-3) * Damping
	wantVY1 := (-2 + 0.05*(2.0/3.0)*2) * Damping
	if math.Abs(ps[1].VX-wantVX1) > 1e-12 || math.Abs(ps[1].VY-wantVY1) > 1e-12 {
		t.Errorf("particle 1 velocity (%.12f, %.12f), want (%.12f, %.12f)", ps[1].VX, ps[1].VY, wantVX1, wantVY1)
	}
}

func TestCoincidentPairContributesNothing(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0.05, Stiffness: 1.0, Gravity: 0, ParticleCount: 2}
	w := testWorld(p, []Particle{
		{ID: 0, X: 100, Y: 100, Density: 2, Pressure: 4, VX: 1},
		{ID: 1, X: 100, Y: 100, Density: 2, Pressure: 4},
	})

	w.accumulateForces(Pointer{})

	// no direction exists, so only damping applies
	ps := w.Particles()
	if math.Abs(ps[0].VX-1*Damping) > 1e-12 || ps[0].VY != 0 {
		t.Errorf("particle 0 velocity (%.12f, %.12f), want (%.12f, 0)", ps[0].VX, ps[0].VY, 1*Damping)
	}
	if ps[1].VX != 0 || ps[1].VY != 0 {
		t.Errorf("particle 1 velocity (%.12f, %.12f), want (0, 0)", ps[1].VX, ps[1].VY)
	}
	if w.Anomalies() != 0 {
		t.Errorf("coincident pair is not an anomaly, counted %d", w.Anomalies())
	}
}

func TestGravityAppliesToEveryParticle(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0.25, ParticleCount: 2}
	w := testWorld(p, []Particle{
		{ID: 0, X: 100, Y: 100, Density: 1},
		{ID: 1, X: 700, Y: 500, Density: 1},
	})

	w.accumulateForces(Pointer{})

	want := 0.25 * Damping
	for i, part := range w.Particles() {
		if math.Abs(part.VY-want) > 1e-12 {
			t.Errorf("particle %d vy %.12f, want %.12f", i, part.VY, want)
		}
	}
}

func TestDampingAppliedAfterForce(t *testing.T) {
	// (v + f) * 0.99 is distinguishable from v*0.99 + f
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0.2, ParticleCount: 1}
	w := testWorld(p, []Particle{
		{ID: 0, X: 400, Y: 300, Density: 1, VY: 1},
	})

	w.accumulateForces(Pointer{})

	want := (1 + 0.2) * Damping
	got := w.Particles()[0].VY
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("vy %.12f, want %.12f", got, want)
	}
}

func TestPointerForce(t *testing.T) {
	tests := []struct {
		name   string
		ptr    Pointer
		wantVX float64
	}{
		{"attracts inside radius", Pointer{X: 160, Y: 100, Active: true}, 0.5 * (InteractionRadius - 60) / InteractionRadius * Damping},
		{"repels when flipped", Pointer{X: 160, Y: 100, Active: true, Repel: true}, -0.5 * (InteractionRadius - 60) / InteractionRadius * Damping},
		{"no force outside radius", Pointer{X: 250, Y: 100, Active: true}, 0},
		{"no force when inactive", Pointer{X: 160, Y: 100}, 0},
		{"no force at zero distance", Pointer{X: 100, Y: 100, Active: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 1}
			w := testWorld(p, []Particle{
				{ID: 0, X: 100, Y: 100, Density: 1},
			})

			w.accumulateForces(tt.ptr)

			got := w.Particles()[0].VX
			if math.Abs(got-tt.wantVX) > 1e-12 {
				t.Errorf("vx %.12f, want %.12f", got, tt.wantVX)
			}
			if vy := w.Particles()[0].VY; vy != 0 {
				t.Errorf("axial fixture leaked into vy: %.12f", vy)
			}
		})
	}
}

func TestNonFiniteForceSkipped(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 2}
	w := testWorld(p, []Particle{
		{ID: 0, X: 100, Y: 100, Density: 1, Pressure: math.Inf(1), VX: 2},
		{ID: 1, X: 110, Y: 100, Density: 1, Pressure: 0},
	})

	w.accumulateForces(Pointer{})

	// both force sums blow up; the updates are discarded and only
	// damping lands
	ps := w.Particles()
	if math.Abs(ps[0].VX-2*Damping) > 1e-12 {
		t.Errorf("particle 0 vx %.12f, want %.12f", ps[0].VX, 2*Damping)
	}
	if ps[1].VX != 0 {
		t.Errorf("particle 1 vx %.12f, want 0", ps[1].VX)
	}
	if w.Anomalies() != 2 {
		t.Errorf("anomalies %d, want 2", w.Anomalies())
	}
}
