// Package optim explores the tuning space with full runs: linear sweeps
// over one parameter and exhaustive grid search over several.
package optim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// Sweep measures how one parameter shapes the settled bath: one seeded
// headless run per value, all other parameters held at Base.
type Sweep struct {
	Param  string
	Min    float64
	Max    float64
	Points int

	Steps  int
	Seed   int64
	Base   fluid.Params
	Width  float64
	Height float64

	// Metrics builds a fresh metric set per point; nil means no metrics.
	Metrics func() []sim.Metric
}

// Point is one sweep measurement: the applied parameter value and the
// final metric values of its run.
type Point struct {
	Value     float64
	Values    map[string]float64
	Anomalies int
}

// Run evaluates every point in order. Values are evenly spaced over
// [Min, Max]; a zero range falls back to the parameter's full range.
func (s *Sweep) Run(ctx context.Context) ([]Point, error) {
	if s.Points < 2 {
		return nil, fmt.Errorf("points must be at least 2, got %d", s.Points)
	}
	spec, ok := findSpec(s.Param)
	if !ok {
		return nil, fmt.Errorf("%w: %q", fluid.ErrUnknownParam, s.Param)
	}

	lo, hi := s.Min, s.Max
	if lo == 0 && hi == 0 {
		lo, hi = spec.Min, spec.Max
	}
	if lo > hi {
		return nil, fmt.Errorf("empty range [%v, %v] for %s", lo, hi, s.Param)
	}

	width, height := s.Width, s.Height
	if width == 0 {
		width = fluid.DefaultWidth
	}
	if height == 0 {
		height = fluid.DefaultHeight
	}

	pitch := (hi - lo) / float64(s.Points-1)
	points := make([]Point, 0, s.Points)
	for i := 0; i < s.Points; i++ {
		select {
		case <-ctx.Done():
			return points, ctx.Err()
		default:
		}

		p := s.Base
		if err := p.Set(s.Param, lo+float64(i)*pitch); err != nil {
			return points, err
		}
		applied := p.Map()[s.Param]

		world := fluid.New(p, width, height, s.Seed)
		runner := sim.NewRunner(world)
		if s.Metrics != nil {
			for _, m := range s.Metrics() {
				runner.AddMetric(m)
			}
		}

		res, err := runner.Run(ctx, sim.RunConfig{Steps: s.Steps})
		if err != nil {
			return points, err
		}

		points = append(points, Point{
			Value:     applied,
			Values:    res.Values,
			Anomalies: res.Anomalies,
		})
		slog.Debug("sweep point done", "param", s.Param, "value", applied)
	}
	return points, nil
}

func findSpec(name string) (fluid.ParamSpec, bool) {
	for _, spec := range fluid.Specs() {
		if spec.Name == name {
			return spec, true
		}
	}
	return fluid.ParamSpec{}, false
}
