package sim

import (
	"time"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// RunState is the runner's ticking state.
type RunState int

const (
	Running RunState = iota
	Paused
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Metric samples one scalar per tick from the particle collection.
// Implementations keep whatever scratch state they need; Reset is called
// whenever the run they observe is reset.
type Metric interface {
	Name() string
	Observe(ps []fluid.Particle, step int)
	Value() float64
	Reset()
}

// Frame is a particle snapshot taken mid-run.
type Frame struct {
	Step      int
	Particles []fluid.Particle
}

// RunConfig drives a headless run.
type RunConfig struct {
	// Steps is the number of ticks to execute.
	Steps int

	// SampleEvery records a full particle frame every k steps; zero
	// disables frame capture.
	SampleEvery int

	// LogEvery emits a debug progress line every k steps; zero disables.
	LogEvery int
}

// Result accumulates a headless run.
type Result struct {
	Steps   int
	Elapsed time.Duration

	// Series holds one value per step per registered metric.
	Series map[string][]float64

	// Values holds each metric's final value.
	Values map[string]float64

	// Frames are the captured snapshots, if sampling was enabled.
	Frames []Frame

	// Final is the particle collection at the end of the run.
	Final []fluid.Particle

	Anomalies int
}
