package fluid

import (
	"math"
	"math/rand"
	"testing"
)

// testWorld builds a world around hand-placed particles without clamping
// the parameters, so fixtures can zero out viscosity or gravity.
func testWorld(p Params, ps []Particle) *World {
	return &World{
		params:    p,
		width:     DefaultWidth,
		height:    DefaultHeight,
		h:         SmoothingRadius,
		reach:     InteractionRadius,
		rng:       rand.New(rand.NewSource(1)),
		particles: ps,
		rho:       make([]float64, len(ps)),
		fx:        make([]float64, len(ps)),
		fy:        make([]float64, len(ps)),
	}
}

func TestInitLayout(t *testing.T) {
	p := DefaultParams()
	p.ParticleCount = 300
	p.AmbientTemperature = 35
	w := New(p, 800, 600, 42)

	ps := w.Particles()
	if len(ps) != 300 {
		t.Fatalf("expected 300 particles, got %d", len(ps))
	}

	seen := make(map[int]bool)
	for i, part := range ps {
		if part.ID != i {
			t.Errorf("particle %d has id %d", i, part.ID)
		}
		if seen[part.ID] {
			t.Errorf("duplicate id %d", part.ID)
		}
		seen[part.ID] = true

		if part.X < 0 || part.X > 800 || part.Y < 0 || part.Y > 600 {
			t.Errorf("particle %d outside domain: (%.2f, %.2f)", i, part.X, part.Y)
		}
		if part.VX < -1 || part.VX > 1 || part.VY < -1 || part.VY > 1 {
			t.Errorf("particle %d initial velocity out of range: (%.3f, %.3f)", i, part.VX, part.VY)
		}
		if part.Density != p.RestDensity {
			t.Errorf("particle %d initial density %.3f, want rest density %.3f", i, part.Density, p.RestDensity)
		}
		if part.Pressure != 0 {
			t.Errorf("particle %d initial pressure %.3f, want 0", i, part.Pressure)
		}
		if part.Temperature != 35 {
			t.Errorf("particle %d temperature %.1f, want 35", i, part.Temperature)
		}
	}
}

func TestInitGridOffset(t *testing.T) {
	p := DefaultParams()
	p.ParticleCount = 100
	w := New(p, 800, 600, 7)

	// grid starts at 30% of the domain; jitter can only push right/down
	for _, part := range w.Particles() {
		if part.X < 0.3*800 || part.Y < 0.3*600 {
			t.Errorf("particle %d before grid origin: (%.2f, %.2f)", part.ID, part.X, part.Y)
		}
	}
}

func TestInitSeedDeterminism(t *testing.T) {
	p := DefaultParams()
	a := New(p, 800, 600, 99)
	b := New(p, 800, 600, 99)

	pa, pb := a.Particles(), b.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("particle counts differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs across same-seed worlds", i)
		}
	}

	c := New(p, 800, 600, 100)
	same := true
	for i, part := range c.Particles() {
		if part != pa[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestTickAtRestIsIdempotent(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 1}
	w := testWorld(p, []Particle{
		{ID: 0, X: 400, Y: 300, Density: 1.0},
	})

	w.Tick(Pointer{})

	got := w.Particles()[0]
	if got.X != 400 || got.Y != 300 {
		t.Errorf("position moved to (%.6f, %.6f)", got.X, got.Y)
	}
	if got.VX != 0 || got.VY != 0 {
		t.Errorf("velocity changed to (%.6f, %.6f)", got.VX, got.VY)
	}
}

func TestDampingMonotonicity(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 1}
	w := testWorld(p, []Particle{
		{ID: 0, X: 300, Y: 300, VX: 2, VY: 1},
	})

	prev := w.Particles()[0].Speed()
	for i := 0; i < 50; i++ {
		w.Tick(Pointer{})
		speed := w.Particles()[0].Speed()
		if speed >= prev {
			t.Fatalf("tick %d: speed %.9f did not decrease from %.9f", i, speed, prev)
		}
		if math.Abs(speed-prev*Damping) > 1e-9 {
			t.Fatalf("tick %d: speed %.9f, want %.9f", i, speed, prev*Damping)
		}
		prev = speed
	}
}

func TestPairSignMatchesDensityDeviation(t *testing.T) {
	tests := []struct {
		name        string
		restDensity float64
	}{
		{"compressed pair separates", 1.0},
		{"rarefied pair attracts", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{RestDensity: tt.restDensity, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 2}
			w := testWorld(p, []Particle{
				{ID: 0, X: 390, Y: 300, Density: 1},
				{ID: 1, X: 400, Y: 300, Density: 1},
			})

			w.Tick(Pointer{})

			ps := w.Particles()
			// both particles see density 1 + (1 - 10/30)^2
			dev := ps[0].Density - tt.restDensity
			sep := ps[1].VX - ps[0].VX
			if dev > 0 && sep <= 0 {
				t.Errorf("density above rest (%+.4f) but pair not separating (%.6f)", dev, sep)
			}
			if dev < 0 && sep >= 0 {
				t.Errorf("density below rest (%+.4f) but pair not closing (%.6f)", dev, sep)
			}
		})
	}
}

func TestSetParamsResetsOnAnyChange(t *testing.T) {
	w := New(DefaultParams(), 800, 600, 5)
	for i := 0; i < 5; i++ {
		w.Tick(Pointer{})
	}
	before := w.Snapshot(nil)

	if w.SetParams(w.Params()) {
		t.Error("unchanged params caused a reset")
	}
	after := w.Snapshot(nil)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed without a tick", i)
		}
	}

	p := w.Params()
	p.Gravity += 0.05
	if !w.SetParams(p) {
		t.Error("gravity change did not reset")
	}
	if w.Params().Gravity != p.Gravity {
		t.Errorf("gravity not applied: %.3f", w.Params().Gravity)
	}

	p = w.Params()
	p.ParticleCount = 300
	if !w.SetParams(p) {
		t.Error("count change did not reset")
	}
	if w.Count() != 300 {
		t.Errorf("expected 300 particles after reset, got %d", w.Count())
	}
}

func TestSetParamsClamps(t *testing.T) {
	w := New(DefaultParams(), 800, 600, 5)
	p := w.Params()
	p.Viscosity = 5 // far above range
	w.SetParams(p)
	if got := w.Params().Viscosity; got != MaxViscosity {
		t.Errorf("viscosity clamped to %.4f, want %.4f", got, MaxViscosity)
	}
}

func TestResizeResets(t *testing.T) {
	w := New(DefaultParams(), 800, 600, 5)
	for i := 0; i < 3; i++ {
		w.Tick(Pointer{})
	}
	w.Resize(400, 300)

	width, height := w.Size()
	if width != 400 || height != 300 {
		t.Errorf("domain %gx%g, want 400x300", width, height)
	}
	// a fresh layout sits inside the grid envelope of the new domain:
	// origin at 30%, 15 columns of pitch 10, jitter under 10
	cols := math.Ceil(math.Sqrt(float64(w.Count())))
	rows := math.Ceil(float64(w.Count()) / cols)
	maxX := 0.3*400 + (cols-1)*10 + 10
	maxY := 0.3*300 + (rows-1)*10 + 10
	for _, part := range w.Particles() {
		if part.X < 0.3*400 || part.X > maxX || part.Y < 0.3*300 || part.Y > maxY {
			t.Errorf("particle %d not relaid out: (%.2f, %.2f)", part.ID, part.X, part.Y)
		}
	}
}

func TestTickSkipsNonFiniteUpdates(t *testing.T) {
	p := Params{RestDensity: 1.0, Viscosity: 0, Stiffness: 1.0, Gravity: 0, ParticleCount: 3}
	w := testWorld(p, []Particle{
		{ID: 0, X: 200, Y: 300, Density: 1},
		{ID: 1, X: 400, Y: 300, Density: 1},
		{ID: 2, X: 600, Y: 300, Density: 1},
	})
	w.particles[1].X = math.NaN()

	w.Tick(Pointer{})

	if w.Anomalies() == 0 {
		t.Error("expected anomalies to be counted")
	}
	for _, i := range []int{0, 2} {
		part := w.Particles()[i]
		if !finite(part.X) || !finite(part.Y) || !finite(part.VX) || !finite(part.VY) {
			t.Errorf("particle %d corrupted: %+v", i, part)
		}
	}
	// the bad particle keeps a finite velocity even though its position
	// cannot be advanced
	bad := w.Particles()[1]
	if !finite(bad.VX) || !finite(bad.VY) {
		t.Errorf("skipped particle velocity corrupted: (%v, %v)", bad.VX, bad.VY)
	}
}

func TestSnapshotCopies(t *testing.T) {
	w := New(DefaultParams(), 800, 600, 5)
	snap := w.Snapshot(nil)
	if len(snap) != w.Count() {
		t.Fatalf("snapshot length %d, want %d", len(snap), w.Count())
	}
	snap[0].X = -1
	if w.Particles()[0].X == -1 {
		t.Error("snapshot aliases live collection")
	}

	// reusing the buffer must not grow it
	again := w.Snapshot(snap)
	if &again[0] != &snap[0] {
		t.Error("snapshot did not reuse the provided buffer")
	}
}

func TestNewClampsDomainAndSeed(t *testing.T) {
	w := New(DefaultParams(), 1, 1, 0)
	width, height := w.Size()
	if width < minDomain || height < minDomain {
		t.Errorf("degenerate domain not clamped: %gx%g", width, height)
	}
	if w.Count() != DefaultParams().ParticleCount {
		t.Errorf("expected %d particles, got %d", DefaultParams().ParticleCount, w.Count())
	}
}
