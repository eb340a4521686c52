package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// Runner serializes access to a world and drives it tick by tick. UI
// frontends share one runner: input handlers write the pointer and flip
// the run state from their event loop, the frame loop calls Tick. The
// pointer is latched once at the top of each tick, so a tick always sees
// one consistent pointer state no matter how often the producer writes.
type Runner struct {
	mu      sync.Mutex
	world   *fluid.World
	state   RunState
	pointer fluid.Pointer
	step    int
	metrics []Metric
	warned  int
	pool    *ParticlePool
}

// NewRunner wraps a world in a running state.
func NewRunner(world *fluid.World) *Runner {
	return &Runner{
		world: world,
		state: Running,
		pool:  NewParticlePool(fluid.MaxParticleCount),
	}
}

// AddMetric registers a per-tick metric.
func (r *Runner) AddMetric(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

// State returns the current run state.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pause stops ticking; Tick becomes a no-op until Resume.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Paused
}

// Resume restarts ticking.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Running
}

// Toggle flips between Running and Paused and returns the new state.
func (r *Runner) Toggle() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Running {
		r.state = Paused
	} else {
		r.state = Running
	}
	return r.state
}

// SetPointer records the most recent pointer state. It is the producer
// half of the handoff; the next tick consumes it.
func (r *Runner) SetPointer(p fluid.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointer = p
}

// Tick advances one step when running and reports whether a step ran.
func (r *Runner) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Running {
		return false
	}
	r.tickLocked()
	return true
}

func (r *Runner) tickLocked() {
	r.world.Tick(r.pointer)
	r.step++
	ps := r.world.Particles()
	for _, m := range r.metrics {
		m.Observe(ps, r.step)
	}
	if n := r.world.Anomalies(); n > r.warned {
		slog.Warn("skipped non-finite particle updates",
			"step", r.step, "new", n-r.warned, "total", n)
		r.warned = n
	}
}

// Reinit relays the particle collection out from scratch. The run state
// is preserved: a paused runner stays paused over a fresh collection.
func (r *Runner) Reinit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world.Init()
	r.resetLocked()
}

// SetParams clamps p and applies it. Any change resets the run; the run
// state is preserved either way. It reports whether a reset happened.
func (r *Runner) SetParams(p fluid.Params) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.world.SetParams(p) {
		return false
	}
	r.resetLocked()
	return true
}

// Resize replaces the domain, which resets the run.
func (r *Runner) Resize(width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world.Resize(width, height)
	r.resetLocked()
}

func (r *Runner) resetLocked() {
	r.step = 0
	r.warned = 0
	for _, m := range r.metrics {
		m.Reset()
	}
}

// Params returns the current clamped parameters.
func (r *Runner) Params() fluid.Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Params()
}

// Size returns the domain dimensions.
func (r *Runner) Size() (width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Size()
}

// Step returns the ticks taken since the last reset.
func (r *Runner) Step() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

// Anomalies returns the skipped non-finite updates since the last reset.
func (r *Runner) Anomalies() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Anomalies()
}

// MetricValues returns the current value of every registered metric.
func (r *Runner) MetricValues() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	vals := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		vals[m.Name()] = m.Value()
	}
	return vals
}

// Snapshot copies the collection into a pooled buffer. Callers hand the
// buffer back with Release once they are done drawing it.
func (r *Runner) Snapshot() []fluid.Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Snapshot(r.pool.Get())
}

// Release returns a snapshot buffer to the pool.
func (r *Runner) Release(ps []fluid.Particle) {
	r.pool.Put(ps)
}

// Run executes a headless run of cfg.Steps ticks, resetting metrics and
// the step counter first. The context is checked between ticks; a
// canceled run returns what it accumulated alongside ErrCanceled.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	r.mu.Lock()
	r.state = Running
	r.resetLocked()
	r.mu.Unlock()

	res := &Result{
		Series: make(map[string][]float64, len(r.metrics)),
		Values: make(map[string]float64, len(r.metrics)),
	}
	start := time.Now()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf("%w at step %d: %v", ErrCanceled, i, ctx.Err())
		default:
		}

		r.mu.Lock()
		r.tickLocked()
		for _, m := range r.metrics {
			res.Series[m.Name()] = append(res.Series[m.Name()], m.Value())
		}
		if cfg.SampleEvery > 0 && r.step%cfg.SampleEvery == 0 {
			res.Frames = append(res.Frames, Frame{Step: r.step, Particles: r.world.Snapshot(nil)})
		}
		res.Steps = r.step
		r.mu.Unlock()

		if cfg.LogEvery > 0 && (i+1)%cfg.LogEvery == 0 {
			slog.Debug("run progress", "step", i+1, "steps", cfg.Steps)
		}
	}

	r.mu.Lock()
	for _, m := range r.metrics {
		res.Values[m.Name()] = m.Value()
	}
	res.Final = r.world.Snapshot(nil)
	res.Anomalies = r.world.Anomalies()
	r.mu.Unlock()

	res.Elapsed = time.Since(start)
	return res, nil
}
