package fluid

import (
	"math"
	"math/rand"
	"time"
)

// Fixed kernel and domain constants. These are deliberately not part of
// Params: the toy's feel depends on the ratio between them.
const (
	// SmoothingRadius is the kernel support cutoff; pairs at or beyond it
	// exert no influence on each other.
	SmoothingRadius = 30.0

	// InteractionRadius is the pointer force cutoff, independent of the
	// smoothing radius.
	InteractionRadius = 100.0

	// Margin is the wall inset; positions are clamped to it on collision.
	Margin = 5.0

	// Damping scales velocity every tick and is the sole dissipation
	// mechanism against the explicit integration scheme.
	Damping = 0.99

	// DensityFloor keeps density strictly positive for force denominators.
	DensityFloor = 0.1

	// Restitution is the factor applied to the normal velocity on a wall
	// hit; the negation makes the bounce inelastic.
	Restitution = -0.5

	DefaultWidth  = 800.0
	DefaultHeight = 600.0

	// gridPitch and jitterSpan shape the initial layout: a fixed-pitch
	// grid starting at 30% of the domain, each particle nudged by up to
	// jitterSpan on each axis.
	gridPitch  = 10.0
	jitterSpan = 10.0

	minDomain = 6 * Margin
)

// World owns the particle collection for one run and advances it tick by
// tick. It is not safe for concurrent use; callers serialize access (the
// sim package wraps it in a runner that does).
type World struct {
	params Params
	width  float64
	height float64

	// h and reach default to SmoothingRadius and InteractionRadius;
	// fixtures override them directly.
	h     float64
	reach float64

	rng       *rand.Rand
	particles []Particle

	// staging buffers so each pass reads a consistent snapshot
	rho []float64
	fx  []float64
	fy  []float64

	anomalies int
}

// New builds a world with clamped parameters and runs the initial layout.
// A zero seed picks one from the clock.
func New(p Params, width, height float64, seed int64) *World {
	p.Clamp()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{
		params: p,
		width:  math.Max(width, minDomain),
		height: math.Max(height, minDomain),
		h:      SmoothingRadius,
		reach:  InteractionRadius,
		rng:    rand.New(rand.NewSource(seed)),
	}
	w.Init()
	return w
}

// Init discards the current collection and lays out a fresh one: a grid of
// ceil(sqrt(n)) columns offset to 30% of the domain, fixed pitch, random
// jitter in [0, jitterSpan) per axis, velocities uniform in [-1, 1] per
// axis. IDs are the generation order.
func (w *World) Init() {
	n := w.params.ParticleCount
	w.particles = make([]Particle, n)
	w.rho = make([]float64, n)
	w.fx = make([]float64, n)
	w.fy = make([]float64, n)
	w.anomalies = 0

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	ox, oy := 0.3*w.width, 0.3*w.height
	for i := range w.particles {
		col, row := i%cols, i/cols
		w.particles[i] = Particle{
			ID:          i,
			X:           ox + float64(col)*gridPitch + w.rng.Float64()*jitterSpan,
			Y:           oy + float64(row)*gridPitch + w.rng.Float64()*jitterSpan,
			VX:          w.rng.Float64()*2 - 1,
			VY:          w.rng.Float64()*2 - 1,
			Density:     w.params.RestDensity,
			Pressure:    0,
			Temperature: w.params.AmbientTemperature,
		}
	}
}

// Tick advances the world by one step: density and pressure for every
// particle, then force accumulation against that field, then integration.
func (w *World) Tick(ptr Pointer) {
	w.updateDensity()
	w.accumulateForces(ptr)
	w.integrate()
}

// SetParams clamps p and, when it differs from the current parameters in
// any field, swaps it in and reinitializes. It reports whether a reset
// happened. Callers must not infer which field changed; a reset discards
// all in-flight state either way.
func (w *World) SetParams(p Params) bool {
	p.Clamp()
	if p == w.params {
		return false
	}
	w.params = p
	w.Init()
	return true
}

// Resize replaces the domain and resets, like any other configuration
// change.
func (w *World) Resize(width, height float64) {
	w.width = math.Max(width, minDomain)
	w.height = math.Max(height, minDomain)
	w.Init()
}

// Particles exposes the live collection. Callers treat it as read-only
// and must not retain it across ticks; use Snapshot for that.
func (w *World) Particles() []Particle {
	return w.particles
}

// Snapshot appends a copy of the collection to dst and returns it.
func (w *World) Snapshot(dst []Particle) []Particle {
	return append(dst[:0], w.particles...)
}

// Params returns the current clamped parameters.
func (w *World) Params() Params {
	return w.params
}

// Count returns the number of particles.
func (w *World) Count() int {
	return len(w.particles)
}

// Size returns the domain dimensions.
func (w *World) Size() (width, height float64) {
	return w.width, w.height
}

// Anomalies counts the non-finite force, velocity and position updates
// skipped since the last Init. Anomalies are local and non-fatal.
func (w *World) Anomalies() int {
	return w.anomalies
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
