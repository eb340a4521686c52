package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// Ensemble fans independent seeded runs out over goroutines. Each run
// builds its own world, runner and metrics, so nothing is shared between
// workers and the O(n²) force pass itself stays single-threaded.
type Ensemble struct {
	Params fluid.Params
	Width  float64
	Height float64

	// Runs is the number of seeds, starting at SeedStart.
	Runs      int
	SeedStart int64

	// Metrics builds a fresh metric set per run; nil means no metrics.
	Metrics func() []Metric
}

// Run executes every seed and returns results indexed by seed offset.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	if e.Runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", e.Runs)
	}
	width, height := e.Width, e.Height
	if width == 0 {
		width = fluid.DefaultWidth
	}
	if height == 0 {
		height = fluid.DefaultHeight
	}

	results := make([]*Result, e.Runs)
	errs := make([]error, e.Runs)

	var wg sync.WaitGroup
	for i := 0; i < e.Runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			world := fluid.New(e.Params, width, height, e.SeedStart+int64(idx))
			runner := NewRunner(world)
			if e.Metrics != nil {
				for _, m := range e.Metrics() {
					runner.AddMetric(m)
				}
			}
			results[idx], errs[idx] = runner.Run(ctx, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
