package optim

import (
	"context"
	"fmt"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// GridSearch evaluates every combination of the given parameter values
// with a full run each and keeps the one minimizing an objective metric.
// Combinations share a seed so they differ only in the parameters.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// Options fixes the run settings shared by every grid cell.
type Options struct {
	Steps   int
	Seed    int64
	Width   float64
	Height  float64
	Metrics func() []sim.Metric
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns base with the best combination applied, plus the
// objective value it scored. Ties keep the first combination visited.
func (g *GridSearch) Search(ctx context.Context, base fluid.Params, opts Options, metricName string) (fluid.Params, float64, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return base, 0, fmt.Errorf("parameter names and ranges must match, got %d and %d", len(g.paramNames), len(g.ranges))
	}

	if opts.Width == 0 {
		opts.Width = fluid.DefaultWidth
	}
	if opts.Height == 0 {
		opts.Height = fluid.DefaultHeight
	}

	best := struct {
		score  float64
		params fluid.Params
		found  bool
	}{}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, opts, metricName, &best.score, &best.params, &best.found)
	if err != nil {
		return base, 0, err
	}
	if !best.found {
		return base, 0, fmt.Errorf("no grid cells evaluated")
	}
	return best.params, best.score, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base fluid.Params,
	opts Options,
	metricName string,
	bestScore *float64,
	bestParams *fluid.Params,
	found *bool,
) error {
	if depth == len(g.paramNames) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := base
		for name, v := range current {
			if err := p.Set(name, v); err != nil {
				return err
			}
		}

		world := fluid.New(p, opts.Width, opts.Height, opts.Seed)
		runner := sim.NewRunner(world)
		if opts.Metrics != nil {
			for _, m := range opts.Metrics() {
				runner.AddMetric(m)
			}
		}

		res, err := runner.Run(ctx, sim.RunConfig{Steps: opts.Steps})
		if err != nil {
			return err
		}

		val, ok := res.Values[metricName]
		if !ok {
			return fmt.Errorf("objective %q not among metric values", metricName)
		}
		if !*found || val < *bestScore {
			*bestScore = val
			*bestParams = p
			*found = true
		}
		return nil
	}

	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.paramNames[depth]] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, opts, metricName, bestScore, bestParams, found); err != nil {
			return err
		}
	}
	return nil
}
